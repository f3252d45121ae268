package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"worklens/internal/modules/classify/domain"
	classifyout "worklens/internal/modules/classify/port/out"
)

// YAMLRuleStore keeps the user rule pack in a single yaml file.
type YAMLRuleStore struct {
	path string
}

func NewYAMLRuleStore(path string) classifyout.RuleStore {
	return &YAMLRuleStore{path: path}
}

func (s *YAMLRuleStore) Load(_ context.Context) (domain.RuleFile, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.RuleFile{}, nil
		}
		return domain.RuleFile{}, fmt.Errorf("read rule pack: %w", err)
	}
	var file domain.RuleFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return domain.RuleFile{}, fmt.Errorf("parse rule pack: %w", err)
	}
	return file, nil
}

func (s *YAMLRuleStore) Append(ctx context.Context, target domain.RuleTarget, spec domain.RuleSpec) error {
	file, err := s.Load(ctx)
	if err != nil {
		return err
	}
	switch target {
	case domain.TargetApp:
		file.Apps = append(file.Apps, spec)
	case domain.TargetURL:
		file.URLs = append(file.URLs, spec)
	default:
		return fmt.Errorf("unknown rule target %q", target)
	}
	raw, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode rule pack: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create rules dir: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write rule pack: %w", err)
	}
	return nil
}
