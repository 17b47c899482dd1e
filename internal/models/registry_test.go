// internal/models/registry_test.go
package models

import "testing"

func TestRegistry_BuiltinSeeded(t *testing.T) {
	r := NewRegistry()

	image := r.Get(DefaultImageModel)
	if image == nil {
		t.Fatal("Default image model missing from registry")
	}
	if image.Kind != KindImage {
		t.Errorf("Expected image kind, got %s", image.Kind)
	}
	if image.DefaultSize != DefaultImageSize {
		t.Errorf("Expected default size %s, got %s", DefaultImageSize, image.DefaultSize)
	}

	video := r.Get(DefaultVideoModel)
	if video == nil {
		t.Fatal("Default video model missing from registry")
	}
	if !video.Async {
		t.Error("Builtin video model should be async")
	}
}

func TestRegistry_RegisterKeepsExisting(t *testing.T) {
	r := NewRegistry()

	err := r.Register(&Config{Key: DefaultChatModel, Label: "Impostor", Kind: KindChat})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if got := r.Get(DefaultChatModel).Label; got == "Impostor" {
		t.Error("Register replaced a builtin model")
	}
}

func TestRegistry_RegisterNew(t *testing.T) {
	r := NewRegistry()

	err := r.Register(&Config{Key: "flux-dev", Label: "Flux Dev", Kind: KindImage})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if r.Get("flux-dev") == nil {
		t.Error("Registered model not retrievable")
	}

	if err := r.Register(&Config{Label: "no key"}); err == nil {
		t.Error("Register without key should fail")
	}
}

func TestRegistry_ByKind(t *testing.T) {
	r := NewRegistry()

	for _, config := range r.ByKind(KindVideo) {
		if config.Kind != KindVideo {
			t.Errorf("ByKind(video) returned %s model %s", config.Kind, config.Key)
		}
	}
	if len(r.ByKind(KindChat)) == 0 {
		t.Error("Expected builtin chat models")
	}
}
