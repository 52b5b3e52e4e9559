package cli

import (
	"os"

	"github.com/pkg/errors"

	"github.com/objex-tools/animutil/config"
	"github.com/objex-tools/animutil/errs"
	"github.com/objex-tools/animutil/logs"
)

// plan is what the root command does after the prompts: write a project
// by autodetection, or process an existing one.
type plan struct {
	Autodetect bool
	Project    string
}

var errNoProject = errors.Wrapf(errs.ErrNoInput, "Please provide a project file to continue")

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

// decide resolves the input, project and autodetect flags into a plan,
// asking p where the combination is ambiguous.
func decide(input, project string, autodetect bool, format string, p Prompter) (plan, error) {
	if input == "" && project == "" {
		return plan{}, errors.Wrapf(errs.ErrNoInput, "Neither an input file nor a project file were provided")
	}
	if project != "" {
		if autodetect && input == "" {
			logs.Warn("Auto-detection is enabled, but there was no input file provided. Nothing will be auto-detected")
		}
		return plan{Project: project}, nil
	}

	sibling := config.ProjectPathFor(input, format)
	exists := fileExists(sibling)

	if autodetect {
		if !exists {
			return plan{Autodetect: true}, nil
		}
		ok, err := p.Confirm("Auto-detection is enabled, but a project file was already detected in this directory. " +
			"Continuing will overwrite the existing file. Would you like to continue?")
		if err != nil || ok {
			return plan{Autodetect: ok}, err
		}
		ok, err = p.Confirm("Would you like to use the existing project file?")
		if err != nil {
			return plan{}, err
		}
		if !ok {
			return plan{}, errNoProject
		}
		return plan{Project: sibling}, nil
	}

	if exists {
		ok, err := p.Confirm("A project file was detected for this input file. Would you like to use it?")
		if err != nil {
			return plan{}, err
		}
		if ok {
			return plan{Project: sibling}, nil
		}
	}
	ok, err := p.Confirm("An input file was provided, but a project file was not. " +
		"One can be created through auto-detection. Would you like to try this feature?")
	if err != nil {
		return plan{}, err
	}
	if !ok {
		return plan{}, errNoProject
	}
	return plan{Autodetect: true}, nil
}
