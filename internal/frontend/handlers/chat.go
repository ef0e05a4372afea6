// Package handlers runs chat sessions: it parses each line, calls the
// companion service and renders the result as ANSI text.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/artifactsbot/internal/command"
	"github.com/cory-johannsen/artifactsbot/internal/companion"
	"github.com/cory-johannsen/artifactsbot/internal/frontend/telnet"
	"github.com/cory-johannsen/artifactsbot/internal/game/catalog"
)

// Companion is the part of companion.Service the chat front end uses.
type Companion interface {
	Registry() *catalog.Registry
	Item(name string) (catalog.Item, error)
	Monster(name string) (catalog.Monster, error)
	Character(ctx context.Context, name string) (catalog.Character, error)
	CharacterEquipment(ctx context.Context, name string) ([]string, error)
	Simulate(ctx context.Context, req companion.SimulateRequest) (companion.SimulationResult, error)
	SimulateCharacter(ctx context.Context, name, monster string) (companion.SimulationResult, error)
	Reload(ctx context.Context) error
}

// errQuit ends a session cleanly.
var errQuit = errors.New("quit")

const prompt = "artifacts> "

// Option configures a ChatHandler.
type Option func(*ChatHandler)

// WithAdminCommands enables the admin command category.
func WithAdminCommands(enabled bool) Option {
	return func(h *ChatHandler) { h.admin = enabled }
}

// WithUptime sets the clock reported by the uptime command.
func WithUptime(fn func() time.Duration) Option {
	return func(h *ChatHandler) { h.uptime = fn }
}

// ChatHandler serves chat sessions against a Companion.
// It implements telnet.SessionHandler.
type ChatHandler struct {
	svc      Companion
	registry *command.Registry
	logger   *zap.Logger
	admin    bool
	uptime   func() time.Duration
}

// NewChatHandler creates a handler that resolves commands through registry.
//
// Precondition: svc, registry and logger must be non-nil.
func NewChatHandler(svc Companion, registry *command.Registry, logger *zap.Logger, opts ...Option) *ChatHandler {
	start := time.Now()
	h := &ChatHandler{
		svc:      svc,
		registry: registry,
		logger:   logger,
		uptime:   func() time.Duration { return time.Since(start) },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleSession greets the client and answers lines until the client quits,
// disconnects, or ctx is cancelled.
//
// Postcondition: Returns nil when the client quits or disconnects.
func (h *ChatHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	logger := h.logger.With(zap.String("session", telnet.SessionID(ctx)))

	greeting := []string{
		telnet.Colorize(telnet.Bold+telnet.BrightYellow, "Artifacts companion"),
		telnet.Colorize(telnet.Dim, "Type 'help' for commands."),
	}
	if err := conn.WriteLines(greeting); err != nil {
		return fmt.Errorf("writing greeting: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := conn.WritePrompt(telnet.Colorize(telnet.BrightCyan, prompt)); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}
		line, err := conn.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("reading line: %w", err)
		}

		out, err := h.Dispatch(ctx, line)
		if errors.Is(err, errQuit) {
			_ = conn.WriteLines(out)
			return nil
		}
		if err != nil {
			out = h.failure(logger, line, err)
		}
		if len(out) > 0 {
			if err := conn.WriteLines(out); err != nil {
				return fmt.Errorf("writing reply: %w", err)
			}
		}
	}
}

// failure turns err into the lines shown to the user and logs it.
func (h *ChatHandler) failure(logger *zap.Logger, line string, err error) []string {
	if msg, ok := companion.UserMessage(err); ok {
		logger.Warn("command rejected", zap.String("line", line), zap.Error(err))
		return []string{telnet.Colorize(telnet.Yellow, msg)}
	}
	var ue *command.UsageError
	if errors.As(err, &ue) {
		logger.Warn("command rejected", zap.String("line", line), zap.Error(err))
		return []string{telnet.Colorize(telnet.Yellow, ue.Message)}
	}
	var ce *companion.ControlError
	if errors.As(err, &ce) && ce.Reason == companion.ReasonOutOfRetries {
		logger.Error("game API unavailable", zap.String("line", line), zap.Error(err))
		return []string{telnet.Colorize(telnet.Red, ce.Message)}
	}

	ref := uuid.NewString()
	logger.Error("unhandled command error",
		zap.String("reference", ref),
		zap.String("line", line),
		zap.Error(err),
	)
	return []string{telnet.Colorize(telnet.Red, fmt.Sprintf("An unhandled exception occurred (reference code: `%s`).", ref))}
}

// Dispatch answers one input line. Lines that are not commands are scanned
// for a [[mention]].
//
// Postcondition: Returns errQuit for the quit command. Blank lines and
// mentions that match nothing yield no output and no error.
func (h *ChatHandler) Dispatch(ctx context.Context, line string) ([]string, error) {
	parsed := command.Parse(line)
	if parsed.Command == "" {
		return nil, nil
	}
	cmd, ok := h.registry.Resolve(parsed.Command)
	if !ok || (cmd.Category == command.CategoryAdmin && !h.admin) {
		if name, found := command.FindMention(line); found {
			return h.mention(name), nil
		}
		return []string{fmt.Sprintf("Unknown command %q. Type 'help' for a list.", parsed.Command)}, nil
	}

	args := parsed.RawArgs
	switch cmd.Handler {
	case command.HandlerHelp:
		return RenderHelp(h.registry.CommandsByCategory(), h.admin), nil
	case command.HandlerQuit:
		return []string{"Goodbye."}, errQuit
	case command.HandlerItem:
		if args == "" {
			return nil, &command.UsageError{Message: "Invalid `name`."}
		}
		it, err := h.svc.Item(args)
		if err != nil {
			return nil, err
		}
		return RenderItem(it, h.svc.Registry()), nil
	case command.HandlerMonster:
		if args == "" {
			return nil, &command.UsageError{Message: "Invalid `name`."}
		}
		m, err := h.svc.Monster(args)
		if err != nil {
			return nil, err
		}
		return RenderMonster(m), nil
	case command.HandlerCharacter:
		if args == "" {
			return nil, &command.UsageError{Message: "Invalid `name`."}
		}
		c, err := h.svc.Character(ctx, args)
		if err != nil {
			return nil, err
		}
		return RenderCharacter(c), nil
	case command.HandlerCharacterEquipment:
		if args == "" {
			return nil, &command.UsageError{Message: "Invalid `name`."}
		}
		codes, err := h.svc.CharacterEquipment(ctx, args)
		if err != nil {
			return nil, err
		}
		return RenderEquipment(args, codes), nil
	case command.HandlerSimulate:
		sa, err := command.ParseSimulateArgs(args)
		if err != nil {
			return nil, err
		}
		res, err := h.svc.Simulate(ctx, companion.SimulateRequest{Monster: sa.Monster, Items: sa.Items, Level: sa.Level})
		if err != nil {
			return nil, err
		}
		return RenderSimulation(res), nil
	case command.HandlerSimulateCharacter:
		name, monster, err := command.ParseNameAndMonster(args)
		if err != nil {
			return nil, err
		}
		res, err := h.svc.SimulateCharacter(ctx, name, monster)
		if err != nil {
			return nil, err
		}
		return RenderSimulation(res), nil
	case command.HandlerReload:
		if err := h.svc.Reload(ctx); err != nil {
			return nil, fmt.Errorf("reloading game data: %w", err)
		}
		reg := h.svc.Registry()
		return []string{fmt.Sprintf("Reloaded %d items and %d monsters (server version %s).",
			reg.ItemCount(), reg.MonsterCount(), reg.Version())}, nil
	case command.HandlerUptime:
		return []string{"Uptime: " + formatUptime(h.uptime())}, nil
	}
	return nil, fmt.Errorf("command %q has no handler %q", cmd.Name, cmd.Handler)
}

// mention looks name up as an item, then as a monster.
func (h *ChatHandler) mention(name string) []string {
	if it, err := h.svc.Item(name); err == nil {
		return RenderItem(it, h.svc.Registry())
	}
	if m, err := h.svc.Monster(name); err == nil {
		return RenderMonster(m)
	}
	h.logger.Warn("mention matched nothing", zap.String("name", name))
	return nil
}

// formatUptime renders d as "1d 2h 3m 4s", dropping leading zero units.
func formatUptime(d time.Duration) string {
	d = d.Truncate(time.Second)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	parts := []string{}
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	for _, unit := range []struct {
		size   time.Duration
		suffix string
	}{{time.Hour, "h"}, {time.Minute, "m"}} {
		n := d / unit.size
		d -= n * unit.size
		if n > 0 || len(parts) > 0 {
			parts = append(parts, fmt.Sprintf("%d%s", n, unit.suffix))
		}
	}
	parts = append(parts, fmt.Sprintf("%ds", d/time.Second))
	return strings.Join(parts, " ")
}
