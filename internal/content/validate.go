package content

import (
	"fmt"

	"nightpaths-server/internal/models"
)

// ValidateStory checks the structural invariants of an authored document:
// non-empty identity, known tone and duration, unique scene ids, every
// choice target resolving to a scene in the same story, and every
// choice-less scene flagged as an ending. Cycles between scenes are allowed.
func ValidateStory(story *models.Story) error {
	if story.StoryID == "" {
		return fmt.Errorf("missing story_id")
	}
	if story.StoryTitle == "" {
		return fmt.Errorf("story %s: missing story_title", story.StoryID)
	}
	if !story.Tone.IsValid() {
		return fmt.Errorf("story %s: unknown tone %q", story.StoryID, story.Tone)
	}
	if !story.Duration.IsValid() {
		return fmt.Errorf("story %s: unknown duration %q", story.StoryID, story.Duration)
	}
	if len(story.Scenes) == 0 {
		return fmt.Errorf("story %s: no scenes", story.StoryID)
	}

	sceneIDs := make(map[string]struct{}, len(story.Scenes))
	for i := range story.Scenes {
		scene := &story.Scenes[i]
		if scene.ID == "" {
			return fmt.Errorf("story %s: scene #%d has no id", story.StoryID, i)
		}
		if _, dup := sceneIDs[scene.ID]; dup {
			return fmt.Errorf("story %s: duplicate scene id %q", story.StoryID, scene.ID)
		}
		sceneIDs[scene.ID] = struct{}{}
	}

	for i := range story.Scenes {
		scene := &story.Scenes[i]

		// A scene without choices is a dead end unless it is an ending.
		if len(scene.Choices) == 0 && !scene.Ending {
			return fmt.Errorf("story %s: scene %q has no choices but is not marked as an ending", story.StoryID, scene.ID)
		}

		for _, choice := range scene.Choices {
			if choice.Next == "" {
				return fmt.Errorf("story %s: scene %q choice %q has no next scene", story.StoryID, scene.ID, choice.ID)
			}
			if _, ok := sceneIDs[choice.Next]; !ok {
				return fmt.Errorf("story %s: scene %q choice %q points to unknown scene %q", story.StoryID, scene.ID, choice.ID, choice.Next)
			}
		}
	}

	return nil
}
