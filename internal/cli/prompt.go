package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/kcd-modkit/modkit/internal/fault"
	"github.com/kcd-modkit/modkit/internal/naming"
)

// surveyPrompter asks for missing scaffold inputs on the terminal.
type surveyPrompter struct {
	defaultRoot string
	opts        []survey.AskOpt
}

func (p surveyPrompter) SelectRoot() (string, error) {
	var root string
	prompt := &survey.Input{
		Message: "Mods root folder:",
		Default: p.defaultRoot,
		Help:    "The mod folder and the KCDUtils library are created inside this folder.",
		Suggest: func(toComplete string) []string {
			matches, _ := filepath.Glob(toComplete + "*")
			return matches
		},
	}
	opts := append([]survey.AskOpt{survey.WithValidator(survey.Required), survey.WithValidator(existingDir)}, p.opts...)
	if err := survey.AskOne(prompt, &root, opts...); err != nil {
		return "", askError(err)
	}
	return root, nil
}

func (p surveyPrompter) ModName() (string, error) {
	var name string
	prompt := &survey.Input{
		Message: "Mod name:",
		Help:    "Free text. \"Epic Loot!\" becomes folder epic_loot and Lua table EpicLoot.",
	}
	opts := append([]survey.AskOpt{survey.WithValidator(validModName)}, p.opts...)
	if err := survey.AskOne(prompt, &name, opts...); err != nil {
		return "", askError(err)
	}
	return name, nil
}

func (p surveyPrompter) ConfirmOverwrite(dir string) (bool, error) {
	ok := false
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("Folder %s already exists. Overwrite?", dir),
		Default: false,
	}
	if err := survey.AskOne(prompt, &ok, p.opts...); err != nil {
		return false, askError(err)
	}
	return ok, nil
}

// askError maps Ctrl-C to fault.ErrCanceled.
func askError(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return fault.ErrCanceled
	}
	return fmt.Errorf("prompting: %w", err)
}

func existingDir(ans any) error {
	s, _ := ans.(string)
	info, err := os.Stat(s)
	if err != nil {
		return fmt.Errorf("folder %s does not exist", s)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a folder", s)
	}
	return nil
}

func validModName(ans any) error {
	s, _ := ans.(string)
	if _, err := naming.Normalize(s); err != nil {
		return errors.New("the name needs at least one letter")
	}
	return nil
}
