package models

// Tone classifies a story into one of the fixed horror sub-genres.
type Tone string

const (
	ToneGothic        Tone = "Gothic"
	ToneSlasher       Tone = "Slasher"
	TonePsychological Tone = "Psychological"
	ToneCosmic        Tone = "Cosmic"
	ToneFolk          Tone = "Folk"
	ToneSupernatural  Tone = "Supernatural"
	ToneOccult        Tone = "Occult"
	ToneBodyHorror    Tone = "Body Horror"
	ToneSurreal       Tone = "Surreal"
	ToneNoirHorror    Tone = "Noir Horror"
)

// AllTones lists every valid tone in display order.
var AllTones = []Tone{
	ToneGothic,
	ToneSlasher,
	TonePsychological,
	ToneCosmic,
	ToneFolk,
	ToneSupernatural,
	ToneOccult,
	ToneBodyHorror,
	ToneSurreal,
	ToneNoirHorror,
}

// IsValid reports whether t is one of the ten known tones.
func (t Tone) IsValid() bool {
	for _, known := range AllTones {
		if t == known {
			return true
		}
	}
	return false
}

// Duration is the rough play-length class of a story.
type Duration string

const (
	DurationShort  Duration = "short"
	DurationMedium Duration = "medium"
	DurationLong   Duration = "long"
)

// IsValid reports whether d is one of the known duration classes.
func (d Duration) IsValid() bool {
	return d == DurationShort || d == DurationMedium || d == DurationLong
}

// Choice is a directed edge from one scene to another. Next references a
// scene id within the same story.
type Choice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Next string `json:"next"`
}

// Scene is a single node in a story's branching narrative graph.
// A scene with no choices must be an ending; content validation enforces it.
type Scene struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Text          string   `json:"text"`
	ImagePrompt   string   `json:"image_prompt"`
	Choices       []Choice `json:"choices"`
	Ending        bool     `json:"ending"`
	EndingType    string   `json:"ending_type,omitempty"`
	ImageFilename string   `json:"image_filename,omitempty"`
}

// StorySettings carries the narrative knobs the author generated the story
// with. Opaque to the server, round-tripped for the client.
type StorySettings struct {
	Tone      Tone     `json:"tone"`
	Language  string   `json:"language"`
	Narrative string   `json:"narrative"`
	Pacing    string   `json:"pacing"`
	Violence  string   `json:"violence"`
	Imagery   string   `json:"imagery"`
	Dialogue  string   `json:"dialogue"`
	Duration  Duration `json:"duration"`
}

// ImageSettings carries art-direction knobs, also round-tripped as-is.
type ImageSettings struct {
	ImageStyle        string `json:"image_style"`
	LightingMood      string `json:"lighting_mood"`
	ColorPalette      string `json:"color_palette"`
	CameraPerspective string `json:"camera_perspective"`
}

// GenerationMeta records which provider/model authored the document.
type GenerationMeta struct {
	Provider    string `json:"provider"`
	Model       string `json:"model"`
	GeneratedAt string `json:"generated_at"`
}

// Story is a complete authored document. Immutable after authoring and
// read-only at runtime; the JSON shape is the external contract and must not
// be changed.
type Story struct {
	StoryID      string         `json:"story_id"`
	StoryTitle   string         `json:"story_title"`
	Tone         Tone           `json:"tone"`
	Duration     Duration       `json:"duration"`
	ArtDirection string         `json:"art_direction"`
	Settings     StorySettings  `json:"settings"`
	ImageSettings ImageSettings `json:"image_settings"`
	Scenes       []Scene        `json:"scenes"`
	Meta         GenerationMeta `json:"_metadata"`
}

// FirstScene returns the entry scene of the story, or nil if it has none.
func (s *Story) FirstScene() *Scene {
	if len(s.Scenes) == 0 {
		return nil
	}
	return &s.Scenes[0]
}

// SceneByID finds a scene by id with a linear scan, or nil if absent.
func (s *Story) SceneByID(id string) *Scene {
	for i := range s.Scenes {
		if s.Scenes[i].ID == id {
			return &s.Scenes[i]
		}
	}
	return nil
}

// Metadata derives the lightweight index record for this story.
func (s *Story) Metadata() StoryMetadata {
	return StoryMetadata{
		StoryID:      s.StoryID,
		StoryTitle:   s.StoryTitle,
		Tone:         s.Tone,
		Duration:     s.Duration,
		ArtDirection: s.ArtDirection,
		SceneCount:   len(s.Scenes),
	}
}

// StoryMetadata is the index record used for listing and filtering without
// loading full documents.
type StoryMetadata struct {
	StoryID      string   `json:"story_id"`
	StoryTitle   string   `json:"story_title"`
	Tone         Tone     `json:"tone"`
	Duration     Duration `json:"duration"`
	ArtDirection string   `json:"art_direction"`
	SceneCount   int      `json:"scene_count"`
}

// StoryFilter narrows listing and random selection. Empty fields match
// everything.
type StoryFilter struct {
	Tone     Tone
	Duration Duration
}

// Matches reports whether the metadata record passes the filter.
func (f StoryFilter) Matches(m StoryMetadata) bool {
	if f.Tone != "" && m.Tone != f.Tone {
		return false
	}
	if f.Duration != "" && m.Duration != f.Duration {
		return false
	}
	return true
}
