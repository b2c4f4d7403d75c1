package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"taskboard/board"
	"taskboard/utils"
)

type AddCmd struct {
	flags *Flags
	app   *App

	prompt board.Prompter
}

// NewAddCmd creates a new add command
func NewAddCmd(flags *Flags, app *App) *AddCmd {
	return &AddCmd{flags: flags, app: app, prompt: promptContent}
}

// Register adds the add command to the application
func (cmd *AddCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "add",
		Usage:     "Add a task to the TODO column",
		UsageText: "taskboard add [content...]",
		Description: `Creates one task. Without arguments an input prompt asks for the content;
cancelling the prompt or leaving it empty creates nothing.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *AddCmd) run(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.Open(ctx); err != nil {
		return err
	}

	view := board.NewView(cmd.app.Store, log.Logger)

	if c.Args().Len() == 0 {
		return view.CreateFromPrompt(ctx, cmd.prompt)
	}

	content := strings.Join(c.Args().Slice(), " ")
	if err := utils.ValidateTaskInput(content); err != nil {
		return err
	}
	return view.Create(ctx, content)
}

func promptContent() (string, bool, error) {
	var content string
	err := huh.NewInput().
		Title("New task").
		Placeholder("What needs doing?").
		Validate(utils.ValidateTaskInput).
		Value(&content).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return content, true, nil
}
