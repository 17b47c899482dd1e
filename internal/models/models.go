// internal/models/models.go
package models

// Kind classifies what a model generates.
type Kind string

const (
	KindChat  Kind = "chat"
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Config describes one generation model: identity, endpoint routing and the
// parameter defaults the tasks fall back to when a caller leaves them unset.
type Config struct {
	Key         string   `json:"key"`
	Label       string   `json:"label"`
	Kind        Kind     `json:"kind"`
	Description string   `json:"description,omitempty"`
	Tips        string   `json:"tips,omitempty"`

	// Endpoint overrides the kind's generic endpoint when set.
	Endpoint string `json:"endpoint,omitempty"`

	// Async marks video models that return a task id and require polling.
	// Models answering with inline media set this to false.
	Async bool `json:"async"`

	// Image parameters
	DefaultSize string   `json:"default_size,omitempty"`
	Sizes       []string `json:"sizes,omitempty"`

	// Video parameters
	Ratios          []string `json:"ratios,omitempty"`
	DefaultRatio    string   `json:"default_ratio,omitempty"`
	Durations       []int    `json:"durations,omitempty"`
	DefaultDuration int      `json:"default_duration,omitempty"`

	IsBuiltin bool `json:"is_builtin"`
}

// Default parameter values shared across the catalogue.
const (
	DefaultImageModel = "doubao-seedream-4-5-251128"
	DefaultVideoModel = "doubao-seedance-1-5-pro_720p"
	DefaultChatModel  = "gpt-4o-mini"

	DefaultImageSize     = "2048x2048"
	DefaultVideoRatio    = "16:9"
	DefaultVideoDuration = 5
)

var seedreamSizes = []string{
	"3024x1296", "2560x1440", "2304x1728", "2496x1664", "2048x2048",
	"1664x2496", "1728x2304", "1440x2560", "1296x3024",
}

var videoRatios = []string{"16:9", "4:3", "1:1", "3:4", "9:16"}

var videoDurations = []int{5, 10}

// Builtin returns the built-in model catalogue. These entries are immutable;
// Register refuses to replace them.
func Builtin() []*Config {
	return []*Config{
		// Image models
		{
			Key:         "doubao-seedream-4-5-251128",
			Label:       "Doubao Seedream 4.5",
			Kind:        KindImage,
			Sizes:       seedreamSizes,
			DefaultSize: DefaultImageSize,
			IsBuiltin:   true,
		},
		{
			Key:       "nano-banana",
			Label:     "Nano Banana",
			Kind:      KindImage,
			Tips:      "write the aspect ratio into the prompt, e.g. \"ratio 9:16\"",
			IsBuiltin: true,
		},
		{
			Key:         "nano-banana-pro",
			Label:       "Nano Banana Pro",
			Kind:        KindImage,
			Sizes:       seedreamSizes,
			DefaultSize: DefaultImageSize,
			IsBuiltin:   true,
		},

		// Video models
		{
			Key:             "doubao-seedance-1-5-pro_720p",
			Label:           "Doubao Seedance 720P",
			Kind:            KindVideo,
			Async:           true,
			Ratios:          videoRatios,
			DefaultRatio:    DefaultVideoRatio,
			Durations:       videoDurations,
			DefaultDuration: DefaultVideoDuration,
			IsBuiltin:       true,
		},
		{
			Key:             "wan2.6_720p",
			Label:           "Wan 2.6 720P",
			Kind:            KindVideo,
			Async:           true,
			Ratios:          videoRatios,
			DefaultRatio:    DefaultVideoRatio,
			Durations:       videoDurations,
			DefaultDuration: DefaultVideoDuration,
			IsBuiltin:       true,
		},
		{
			Key:             "sora-2",
			Label:           "Sora 2",
			Kind:            KindVideo,
			Async:           true,
			Ratios:          videoRatios,
			DefaultRatio:    DefaultVideoRatio,
			Durations:       videoDurations,
			DefaultDuration: DefaultVideoDuration,
			IsBuiltin:       true,
		},

		// Chat models
		{Key: "gpt-4o-mini", Label: "GPT-4o Mini", Kind: KindChat, IsBuiltin: true},
		{Key: "gpt-4o", Label: "GPT-4o", Kind: KindChat, IsBuiltin: true},
		{Key: "gpt-5.2", Label: "GPT-5.2", Kind: KindChat, IsBuiltin: true},
		{Key: "deepseek-chat", Label: "DeepSeek Chat", Kind: KindChat, IsBuiltin: true},
		{Key: "doubao-seed-1-6-flash-250615", Label: "Doubao Seed Flash", Kind: KindChat, IsBuiltin: true},
		{Key: "gemini-3-pro", Label: "Gemini 3 Pro", Kind: KindChat, IsBuiltin: true},
	}
}
