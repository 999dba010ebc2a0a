package wm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ItsNotGoodName/x-tilewm/internal/mosaic"
	"github.com/ItsNotGoodName/x-tilewm/internal/tree"
)

var ErrUnknownCommand = errors.New("unknown command")

// Platform commands.
type (
	CommandNewWindow struct {
		Handle tree.Handle
	}
	CommandDestroyWindow struct {
		Handle tree.Handle
	}
	// CommandUnmapWindow reports that a client withdrew its window. A later
	// map request manages it again from scratch.
	CommandUnmapWindow struct {
		Handle tree.Handle
	}
	// CommandFocusWindow reports that the platform moved input focus to a window.
	CommandFocusWindow struct {
		Handle tree.Handle
	}
	CommandScreensChanged struct {
		Rects []mosaic.Rect
	}
)

// User commands.
type (
	CommandFocus struct {
		Direction tree.TransferDirection
	}
	CommandMove struct {
		Direction tree.TransferDirection
	}
	// CommandResize moves one edge of the focus node by Delta pixels. A zero
	// Delta uses the configured resize step, negated when Shrink is set.
	CommandResize struct {
		Delta     int
		Direction tree.TransferDirection
		Shrink    bool
	}
	CommandSplit struct {
		Direction mosaic.Direction
		Toggle    bool
	}
	CommandFullscreen     struct{}
	CommandFloatingToggle struct{}
	CommandWorkspace      struct {
		Index int
	}
	CommandMoveToWorkspace struct {
		Index int
	}
	CommandKill       struct{}
	CommandDebugGraph struct{}
	CommandReload     struct{}
)

// CommandSnapshot reads the tree on the consumer goroutine.
type CommandSnapshot struct {
	replyC chan<- tree.Snapshot
}

// Parse turns one command line into a command.
//
//	focus left|right|up|down
//	move left|right|up|down
//	move workspace number N
//	workspace number N
//	resize grow|shrink right|down [N]
//	split vertical|horizontal|toggle
//	layout toggle split
//	fullscreen
//	floating toggle
//	kill
//	debug graph
//	reload
func Parse(line string) (any, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrUnknownCommand)
	}

	unknown := fmt.Errorf("%w: %q", ErrUnknownCommand, line)

	switch fields[0] {
	case "focus":
		if len(fields) != 2 {
			return nil, unknown
		}
		dir, ok := parseTransferDirection(fields[1])
		if !ok {
			return nil, unknown
		}
		return CommandFocus{Direction: dir}, nil
	case "move":
		if len(fields) == 4 && fields[1] == "workspace" && fields[2] == "number" {
			index, err := parseIndex(fields[3])
			if err != nil {
				return nil, fmt.Errorf("%w: %w", unknown, err)
			}
			return CommandMoveToWorkspace{Index: index}, nil
		}
		if len(fields) != 2 {
			return nil, unknown
		}
		dir, ok := parseTransferDirection(fields[1])
		if !ok {
			return nil, unknown
		}
		return CommandMove{Direction: dir}, nil
	case "workspace":
		if len(fields) != 3 || fields[1] != "number" {
			return nil, unknown
		}
		index, err := parseIndex(fields[2])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", unknown, err)
		}
		return CommandWorkspace{Index: index}, nil
	case "resize":
		return parseResize(fields, unknown)
	case "split":
		if len(fields) != 2 {
			return nil, unknown
		}
		switch fields[1] {
		case "vertical", "v":
			return CommandSplit{Direction: mosaic.Vertical}, nil
		case "horizontal", "h":
			return CommandSplit{Direction: mosaic.Horizontal}, nil
		case "toggle", "t":
			return CommandSplit{Toggle: true}, nil
		}
	case "layout":
		if len(fields) == 3 && fields[1] == "toggle" && fields[2] == "split" {
			return CommandSplit{Toggle: true}, nil
		}
	case "fullscreen":
		if len(fields) == 1 || (len(fields) == 2 && fields[1] == "toggle") {
			return CommandFullscreen{}, nil
		}
	case "floating":
		if len(fields) == 2 && fields[1] == "toggle" {
			return CommandFloatingToggle{}, nil
		}
	case "kill":
		if len(fields) == 1 {
			return CommandKill{}, nil
		}
	case "debug":
		if len(fields) == 2 && fields[1] == "graph" {
			return CommandDebugGraph{}, nil
		}
	case "reload":
		if len(fields) == 1 {
			return CommandReload{}, nil
		}
	}

	return nil, unknown
}

func parseResize(fields []string, unknown error) (any, error) {
	if len(fields) != 3 && len(fields) != 4 {
		return nil, unknown
	}

	sign := 1
	switch fields[1] {
	case "grow":
	case "shrink":
		sign = -1
	default:
		return nil, unknown
	}

	var dir tree.TransferDirection
	switch fields[2] {
	case "right":
		dir = tree.Right
	case "down":
		dir = tree.Down
	default:
		return nil, unknown
	}

	delta := 0
	if len(fields) == 4 {
		n, err := strconv.Atoi(strings.TrimSuffix(fields[3], "px"))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: invalid amount %q", unknown, fields[3])
		}
		delta = n
	}

	return CommandResize{Delta: sign * delta, Direction: dir, Shrink: sign < 0}, nil
}

func parseTransferDirection(s string) (tree.TransferDirection, bool) {
	switch s {
	case "left":
		return tree.Left, true
	case "up":
		return tree.Up, true
	case "right":
		return tree.Right, true
	case "down":
		return tree.Down, true
	default:
		return 0, false
	}
}

func parseIndex(s string) (int, error) {
	index, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if index < 0 {
		return 0, fmt.Errorf("negative workspace %d", index)
	}
	return index, nil
}
