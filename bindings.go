// bindings.go
package main

import (
	"fmt"

	"github.com/xiaoliu2354/huobao-canvas/internal/canvas"
	"github.com/xiaoliu2354/huobao-canvas/internal/models"
	"github.com/xiaoliu2354/huobao-canvas/internal/project"
	"github.com/xiaoliu2354/huobao-canvas/internal/task"
	"github.com/xiaoliu2354/huobao-canvas/internal/workflow"
)

// RPC surface exposed to the front end. Every exported method on App is
// callable by name over the websocket bridge.

// Settings

// GetSettings returns the stored API configuration. The key itself is
// reported only as a configured flag.
func (a *App) GetSettings() map[string]interface{} {
	return map[string]interface{}{
		"baseUrl":    a.settings.BaseURL(),
		"configured": a.settings.IsConfigured(),
	}
}

func (a *App) SetAPIKey(key string) error {
	if err := a.settings.SetAPIKey(key); err != nil {
		return err
	}
	a.rebuildClient()
	return nil
}

func (a *App) SetBaseURL(url string) error {
	if err := a.settings.SetBaseURL(url); err != nil {
		return err
	}
	a.rebuildClient()
	return nil
}

func (a *App) ClearSettings() error {
	if err := a.settings.Clear(); err != nil {
		return err
	}
	a.rebuildClient()
	return nil
}

// Models

func (a *App) ListModels() []*models.Config {
	return a.modelRegistry.All()
}

func (a *App) ListModelsByKind(kind string) []*models.Config {
	return a.modelRegistry.ByKind(models.Kind(kind))
}

// Projects

func (a *App) ListProjects() []*project.Project {
	return a.projects.List()
}

func (a *App) SortedProjects(field, order string) []*project.Project {
	return a.projects.Sorted(project.SortField(field), project.SortOrder(order))
}

func (a *App) CreateProject(name string) *project.Project {
	return a.projects.Create(name)
}

func (a *App) GetProject(id string) (*project.Project, error) {
	return a.projects.Get(id)
}

func (a *App) RenameProject(id, name string) (*project.Project, error) {
	return a.projects.Rename(id, name)
}

func (a *App) SetProjectThumbnail(id, value string) (*project.Project, error) {
	return a.projects.SetThumbnail(id, value)
}

func (a *App) DeleteProject(id string) error {
	return a.projects.Delete(id)
}

func (a *App) DuplicateProject(id string) (*project.Project, error) {
	return a.projects.Duplicate(id)
}

func (a *App) GetCanvas(id string) (canvas.Graph, error) {
	return a.projects.GetCanvas(id)
}

func (a *App) UpdateCanvas(id string, patch project.CanvasPatch) (*project.Project, error) {
	return a.projects.UpdateCanvas(id, patch)
}

func (a *App) SetCurrentProject(id string) error {
	return a.projects.SetCurrent(id)
}

func (a *App) CurrentProject() *project.Project {
	return a.projects.Current()
}

// Templates

func (a *App) ListTemplates() []*workflow.Template {
	return a.templateRegistry.All()
}

// ApplyTemplate stamps a template's nodes and edges onto the project's
// canvas at the given offset.
func (a *App) ApplyTemplate(projectID, templateID string, x, y float64) (*project.Project, error) {
	template := a.templateRegistry.Get(templateID)
	if template == nil {
		return nil, fmt.Errorf("template not found: %s", templateID)
	}

	graph, err := a.projects.GetCanvas(projectID)
	if err != nil {
		return nil, err
	}

	nodes, edges := template.Instantiate(canvas.Position{X: x, Y: y})
	merged := append(graph.Nodes, nodes...)
	mergedEdges := append(graph.Edges, edges...)
	return a.projects.UpdateCanvas(projectID, project.CanvasPatch{
		Nodes: &merged,
		Edges: &mergedEdges,
	})
}

// Generation tasks

func (a *App) SendChat(content string) (string, error) {
	return a.chat.Send(a.ctx, content)
}

func (a *App) StopChat() {
	a.chat.Stop()
}

func (a *App) ClearChat() {
	a.chat.Clear()
}

func (a *App) ChatMessages() []task.Message {
	return a.chat.Messages()
}

func (a *App) GenerateImage(params task.ImageParams) ([]task.ImageResult, error) {
	return a.image.Generate(a.ctx, params)
}

func (a *App) GenerateVideo(params task.VideoParams) (*task.VideoResult, error) {
	return a.video.Generate(a.ctx, params)
}

func (a *App) VideoProgress() task.Progress {
	return a.video.Progress()
}
