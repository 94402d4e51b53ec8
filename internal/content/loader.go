package content

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"nightpaths-server/internal/models"

	"go.uber.org/zap"
)

// LoadDir reads every *.json story document in dir, validates each one and
// returns them ordered by story id. Any malformed or invalid document is a
// hard error; silently serving a broken story graph leads players into a
// dead end, so startup fails instead.
func LoadDir(dir string, logger *zap.Logger) ([]models.Story, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read content directory %s: %w", dir, err)
	}

	log := logger.Named("ContentLoader")

	var stories []models.Story
	seen := make(map[string]string) // story id -> filename, duplicate detection

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read story file %s: %w", path, err)
		}

		var story models.Story
		if err := json.Unmarshal(data, &story); err != nil {
			return nil, fmt.Errorf("failed to parse story file %s: %w", path, err)
		}

		if err := ValidateStory(&story); err != nil {
			return nil, fmt.Errorf("invalid story document %s: %w", path, err)
		}

		if prev, ok := seen[story.StoryID]; ok {
			return nil, fmt.Errorf("duplicate story id %q in %s (already defined in %s)", story.StoryID, entry.Name(), prev)
		}
		seen[story.StoryID] = entry.Name()

		log.Debug("Loaded story document",
			zap.String("storyID", story.StoryID),
			zap.String("file", entry.Name()),
			zap.Int("scenes", len(story.Scenes)),
		)
		stories = append(stories, story)
	}

	if len(stories) == 0 {
		return nil, fmt.Errorf("no story documents found in %s", dir)
	}

	sort.Slice(stories, func(i, j int) bool { return stories[i].StoryID < stories[j].StoryID })

	log.Info("Story content loaded", zap.Int("count", len(stories)), zap.String("dir", dir))
	return stories, nil
}
