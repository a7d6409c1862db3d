package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jwebster45206/wod-sheets/pkg/sheet"
)

// command is a parsed console input line.
type command struct {
	name  string
	roll  sheet.RollRequest
	track string
	index int
}

const helpText = `Commands:
• /roll <ability> [skill] [difficulty] - roll a trait pool
• /pool <frenzy|willpower|remorse|harano|hauglosk> [difficulty]
• /dice <n> [difficulty] - roll a plain pool
• /step <track> <box> - cycle a box (boxes count from 1)
• /lock - toggle the sheet lock
• /copy - copy the last roll to the clipboard
• /help - show this help
• Ctrl+C - quit`

// parseCommand turns a slash command into a request. Difficulty defaults to
// zero (no pass/fail).
func parseCommand(input string) (command, error) {
	fields := strings.Fields(strings.TrimSpace(input))
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return command{}, fmt.Errorf("commands start with /, try /help")
	}
	cmd := command{name: strings.ToLower(strings.TrimPrefix(fields[0], "/"))}
	args := fields[1:]

	switch cmd.name {
	case "help", "lock", "copy":
		return cmd, nil

	case "roll":
		if len(args) == 0 {
			return cmd, fmt.Errorf("usage: /roll <ability> [skill] [difficulty]")
		}
		args, diff, err := trailingInt(args)
		if err != nil {
			return cmd, err
		}
		cmd.roll = sheet.RollRequest{Ability: args[0], Difficulty: diff}
		if len(args) > 1 {
			cmd.roll.Skill = strings.Join(args[1:], " ")
		}
		return cmd, nil

	case "pool":
		if len(args) == 0 {
			return cmd, fmt.Errorf("usage: /pool <name> [difficulty]")
		}
		args, diff, err := trailingInt(args)
		if err != nil {
			return cmd, err
		}
		cmd.roll = sheet.RollRequest{Pool: args[0], Difficulty: diff}
		return cmd, nil

	case "dice":
		if len(args) == 0 || len(args) > 2 {
			return cmd, fmt.Errorf("usage: /dice <n> [difficulty]")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return cmd, fmt.Errorf("dice count must be a non-negative number")
		}
		cmd.roll = sheet.RollRequest{Dice: n, Label: fmt.Sprintf("%d dice", n)}
		if len(args) == 2 {
			if cmd.roll.Difficulty, err = strconv.Atoi(args[1]); err != nil {
				return cmd, fmt.Errorf("difficulty must be a number")
			}
		}
		return cmd, nil

	case "step":
		if len(args) != 2 {
			return cmd, fmt.Errorf("usage: /step <track> <box>")
		}
		box, err := strconv.Atoi(args[1])
		if err != nil || box < 1 {
			return cmd, fmt.Errorf("box must be a number from 1")
		}
		cmd.track, cmd.index = strings.ToLower(args[0]), box-1
		return cmd, nil
	}
	return cmd, fmt.Errorf("unknown command /%s, try /help", cmd.name)
}

// trailingInt splits off a final numeric argument when there is more than
// one argument.
func trailingInt(args []string) ([]string, int, error) {
	if len(args) < 2 {
		return args, 0, nil
	}
	last := args[len(args)-1]
	n, err := strconv.Atoi(last)
	if err != nil {
		return args, 0, nil
	}
	if n < 0 {
		return nil, 0, fmt.Errorf("difficulty must not be negative")
	}
	return args[:len(args)-1], n, nil
}
