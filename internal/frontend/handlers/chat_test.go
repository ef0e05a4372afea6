package handlers

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/artifactsbot/internal/artifacts"
	"github.com/cory-johannsen/artifactsbot/internal/command"
	"github.com/cory-johannsen/artifactsbot/internal/companion"
	"github.com/cory-johannsen/artifactsbot/internal/config"
	"github.com/cory-johannsen/artifactsbot/internal/frontend/telnet"
	"github.com/cory-johannsen/artifactsbot/internal/game/catalog"
	"github.com/cory-johannsen/artifactsbot/internal/testutil"
)

// fakeCompanion serves lookups from a fixed registry and records simulate calls.
type fakeCompanion struct {
	reg        *catalog.Registry
	characters map[string]catalog.Character
	charErr    error
	simErr     error
	lastSim    companion.SimulateRequest
	reloads    int
}

func (f *fakeCompanion) Registry() *catalog.Registry { return f.reg }

func (f *fakeCompanion) Item(name string) (catalog.Item, error) {
	it, ok := f.reg.Item(catalog.ToCodeFormat(name))
	if !ok {
		return catalog.Item{}, &companion.ControlError{Reason: companion.ReasonInvalidResource, Message: fmt.Sprintf("Item `%s` does not exist.", name)}
	}
	return it, nil
}

func (f *fakeCompanion) Monster(name string) (catalog.Monster, error) {
	m, ok := f.reg.Monster(catalog.ToCodeFormat(name))
	if !ok {
		return catalog.Monster{}, &companion.ControlError{Reason: companion.ReasonInvalidResource, Message: fmt.Sprintf("Monster `%s` does not exist.", name)}
	}
	return m, nil
}

func (f *fakeCompanion) Character(_ context.Context, name string) (catalog.Character, error) {
	if f.charErr != nil {
		return catalog.Character{}, f.charErr
	}
	c, ok := f.characters[name]
	if !ok {
		return catalog.Character{}, &companion.ControlError{Reason: companion.ReasonCommandResponse, Message: "No character with that name exists. (This lookup is case-sensitive.)"}
	}
	return c, nil
}

func (f *fakeCompanion) CharacterEquipment(ctx context.Context, name string) ([]string, error) {
	c, err := f.Character(ctx, name)
	if err != nil {
		return nil, err
	}
	return c.EquippedItemCodes(), nil
}

func (f *fakeCompanion) Simulate(_ context.Context, req companion.SimulateRequest) (companion.SimulationResult, error) {
	f.lastSim = req
	if f.simErr != nil {
		return companion.SimulationResult{}, f.simErr
	}
	return sampleResult(), nil
}

func (f *fakeCompanion) SimulateCharacter(_ context.Context, name, monster string) (companion.SimulationResult, error) {
	f.lastSim = companion.SimulateRequest{Monster: monster}
	res := sampleResult()
	res.CharacterName = name
	return res, f.simErr
}

func (f *fakeCompanion) Reload(context.Context) error {
	f.reloads++
	return nil
}

func newFake(t *testing.T) *fakeCompanion {
	t.Helper()
	reg, err := catalog.NewRegistry("2.1",
		[]catalog.Item{
			{Code: "copper_ore", Name: "Copper Ore", Level: 1, Type: "resource", Subtype: "mining"},
			{Code: "copper_dagger", Name: "Copper Dagger", Level: 1, Type: "weapon",
				Effects: []catalog.Effect{{Code: catalog.EffectFireAttack, Value: 6}},
				Craft: &catalog.Craft{Skill: "weaponcrafting", Level: 1,
					Items: []catalog.CraftItem{{Code: "copper_ore", Quantity: 6}}}},
		},
		[]catalog.Monster{
			{Code: "chicken", Name: "Chicken", Level: 1, MinGold: 0, MaxGold: 3,
				Drops:        []catalog.Drop{{Code: "copper_ore", Rate: 8, MinQuantity: 1, MaxQuantity: 3}},
				MonsterStats: catalog.MonsterStats{HP: 60, WaterAttack: 4, FireResist: -10}},
		},
	)
	require.NoError(t, err)
	return &fakeCompanion{
		reg:        reg,
		characters: map[string]catalog.Character{
			"Alice": {Name: "Alice", Level: 5, WeaponSlot: "copper_dagger", Ring1Slot: "copper_ring"},
		},
	}
}

func newHandler(t *testing.T, svc Companion, opts ...Option) *ChatHandler {
	t.Helper()
	return NewChatHandler(svc, command.DefaultRegistry(), zaptest.NewLogger(t), opts...)
}

func plain(lines []string) string {
	return telnet.StripANSI(strings.Join(lines, "\n"))
}

func TestDispatch_BlankLine(t *testing.T) {
	h := newHandler(t, newFake(t))
	out, err := h.Dispatch(context.Background(), "   ")
	assert.NoError(t, err)
	assert.Nil(t, out)
}

func TestDispatch_Help(t *testing.T) {
	h := newHandler(t, newFake(t))
	out, err := h.Dispatch(context.Background(), "help")
	require.NoError(t, err)
	text := plain(out)
	assert.Contains(t, text, "simulate (sim) <monster> | <item,item,...> [| level]")
	assert.Contains(t, text, "Game commands")
	assert.NotContains(t, text, "reload")

	h = newHandler(t, newFake(t), WithAdminCommands(true))
	out, err = h.Dispatch(context.Background(), "?")
	require.NoError(t, err)
	assert.Contains(t, plain(out), "Admin commands")
	assert.Contains(t, plain(out), "reload")
}

func TestDispatch_AdminCommandsHiddenWhenDisabled(t *testing.T) {
	fake := newFake(t)
	h := newHandler(t, fake)
	out, err := h.Dispatch(context.Background(), "reload")
	require.NoError(t, err)
	assert.Contains(t, plain(out), `Unknown command "reload"`)
	assert.Equal(t, 0, fake.reloads)
}

func TestDispatch_Reload(t *testing.T) {
	fake := newFake(t)
	h := newHandler(t, fake, WithAdminCommands(true))
	out, err := h.Dispatch(context.Background(), "reload")
	require.NoError(t, err)
	assert.Equal(t, []string{"Reloaded 2 items and 1 monsters (server version 2.1)."}, out)
	assert.Equal(t, 1, fake.reloads)
}

func TestDispatch_Uptime(t *testing.T) {
	h := newHandler(t, newFake(t), WithAdminCommands(true), WithUptime(func() time.Duration { return 26*time.Hour + 61*time.Second }))
	out, err := h.Dispatch(context.Background(), "uptime")
	require.NoError(t, err)
	assert.Equal(t, []string{"Uptime: 1d 2h 1m 1s"}, out)
}

func TestDispatch_Quit(t *testing.T) {
	h := newHandler(t, newFake(t))
	out, err := h.Dispatch(context.Background(), "exit")
	assert.ErrorIs(t, err, errQuit)
	assert.Equal(t, []string{"Goodbye."}, out)
}

func TestDispatch_Item(t *testing.T) {
	h := newHandler(t, newFake(t))
	out, err := h.Dispatch(context.Background(), "item Copper Ore")
	require.NoError(t, err)
	text := plain(out)
	assert.Contains(t, text, "Copper Ore (copper_ore)")
	assert.Contains(t, text, "Type: Resource")
	assert.Contains(t, text, "Subtype: Mining")
	assert.Contains(t, text, "Used to Craft\n  copper_dagger")
	assert.Contains(t, text, "Dropped By\n  chicken 12.5% (1-3)")
}

func TestDispatch_ItemWithRecipe(t *testing.T) {
	h := newHandler(t, newFake(t))
	out, err := h.Dispatch(context.Background(), "item copper_dagger")
	require.NoError(t, err)
	text := plain(out)
	assert.Contains(t, text, "6 Fire Attack")
	assert.Contains(t, text, "Craft Skill: weaponcrafting 1")
	assert.Contains(t, text, "copper_ore x6")
}

func TestDispatch_Monster(t *testing.T) {
	h := newHandler(t, newFake(t))
	out, err := h.Dispatch(context.Background(), "mon chicken")
	require.NoError(t, err)
	text := plain(out)
	assert.Contains(t, text, "Chicken (chicken)")
	assert.Contains(t, text, "Max HP: 60")
	assert.Contains(t, text, "Gold: 0 - 3")
	assert.Contains(t, text, "Water: 4")
	assert.Contains(t, text, "Fire: -10%")
}

func TestDispatch_MissingNameIsUsageError(t *testing.T) {
	h := newHandler(t, newFake(t))
	for _, line := range []string{"item", "monster", "character", "gear"} {
		_, err := h.Dispatch(context.Background(), line)
		var ue *command.UsageError
		require.True(t, errors.As(err, &ue), line)
		assert.Equal(t, "Invalid `name`.", ue.Message)
	}
}

func TestDispatch_CharacterAndEquipment(t *testing.T) {
	h := newHandler(t, newFake(t))
	out, err := h.Dispatch(context.Background(), "char Alice")
	require.NoError(t, err)
	assert.Contains(t, plain(out), "Combat: 5 (0%)")

	out, err = h.Dispatch(context.Background(), "gear Alice")
	require.NoError(t, err)
	assert.Equal(t, "copper_dagger,copper_ring", telnet.StripANSI(out[1]))
}

func TestDispatch_Simulate(t *testing.T) {
	fake := newFake(t)
	h := newHandler(t, fake)
	out, err := h.Dispatch(context.Background(), "sim Chicken | copper dagger, copper ring | 12")
	require.NoError(t, err)
	assert.Equal(t, companion.SimulateRequest{Monster: "Chicken", Items: []string{"copper dagger", "copper ring"}, Level: 12}, fake.lastSim)
	assert.Contains(t, plain(out), "Simulate: Character vs Chicken")
}

func TestDispatch_SimulateCharacter(t *testing.T) {
	fake := newFake(t)
	h := newHandler(t, fake)
	out, err := h.Dispatch(context.Background(), "simc Alice | chicken")
	require.NoError(t, err)
	assert.Equal(t, "chicken", fake.lastSim.Monster)
	assert.Contains(t, plain(out), "Simulate: Alice vs Chicken")
}

func TestDispatch_Mention(t *testing.T) {
	h := newHandler(t, newFake(t))

	out, err := h.Dispatch(context.Background(), "where do I get [[Copper Ore]]?")
	require.NoError(t, err)
	assert.Contains(t, plain(out), "Copper Ore (copper_ore)")

	out, err = h.Dispatch(context.Background(), "is [[chicken]] easy")
	require.NoError(t, err)
	assert.Contains(t, plain(out), "Chicken (chicken)")

	out, err = h.Dispatch(context.Background(), "what is [[dragon]]")
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestDispatch_UnknownCommand(t *testing.T) {
	h := newHandler(t, newFake(t))
	out, err := h.Dispatch(context.Background(), "dance")
	require.NoError(t, err)
	assert.Equal(t, []string{`Unknown command "dance". Type 'help' for a list.`}, out)
}

func observedHandler(t *testing.T, svc Companion) (*ChatHandler, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return NewChatHandler(svc, command.DefaultRegistry(), zap.New(core)), logs
}

func TestFailure_UserFacingErrorsShownVerbatim(t *testing.T) {
	h, logs := observedHandler(t, newFake(t))
	_, err := h.Dispatch(context.Background(), "item dragon scale")
	require.Error(t, err)

	out := h.failure(h.logger, "item dragon scale", err)
	assert.Equal(t, "Item `dragon scale` does not exist.", plain(out))
	require.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestFailure_UsageError(t *testing.T) {
	h, logs := observedHandler(t, newFake(t))
	_, err := h.Dispatch(context.Background(), "sim chicken | copper_dagger | high")
	require.Error(t, err)

	out := h.failure(h.logger, "sim", err)
	assert.Equal(t, "Invalid `level`.", plain(out))
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestFailure_OutOfRetries(t *testing.T) {
	fake := newFake(t)
	fake.charErr = &companion.ControlError{Reason: companion.ReasonOutOfRetries, Message: "Max retries exceeded.", Err: artifacts.ErrOutOfRetries}
	h, logs := observedHandler(t, fake)
	_, err := h.Dispatch(context.Background(), "char Alice")

	out := h.failure(h.logger, "char Alice", err)
	assert.Equal(t, "Max retries exceeded.", plain(out))
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestFailure_UnhandledErrorGetsReferenceCode(t *testing.T) {
	fake := newFake(t)
	fake.simErr = errors.New("boom")
	h, logs := observedHandler(t, fake)
	_, err := h.Dispatch(context.Background(), "sim chicken | copper_dagger")
	require.Error(t, err)

	out := h.failure(h.logger, "sim chicken | copper_dagger", err)
	m := regexp.MustCompile("^An unhandled exception occurred \\(reference code: `([0-9a-f-]{36})`\\)\\.$").FindStringSubmatch(plain(out))
	require.NotNil(t, m, plain(out))

	entries := logs.FilterMessage("unhandled command error").All()
	require.Len(t, entries, 1)
	assert.Equal(t, m[1], entries[0].ContextMap()["reference"])
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestFormatUptime(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{59*time.Second + 900*time.Millisecond, "59s"},
		{65 * time.Second, "1m 5s"},
		{time.Hour + 2*time.Second, "1h 0m 2s"},
		{49*time.Hour + 3*time.Minute, "2d 1h 3m 0s"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, formatUptime(tc.d), tc.d.String())
	}
}

func TestHandleSession_EndToEnd(t *testing.T) {
	h := newHandler(t, newFake(t))
	acc := telnet.NewAcceptor(config.TelnetConfig{Host: "127.0.0.1", ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second},
		h, zaptest.NewLogger(t))
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = acc.Start(context.Background())
	}()
	t.Cleanup(func() {
		acc.Stop()
		<-done
	})
	require.Eventually(t, func() bool { return acc.Addr() != "" }, 2*time.Second, 10*time.Millisecond)

	client := testutil.DialChat(t, acc.Addr())
	client.Expect("Type 'help' for commands.", 2*time.Second)
	client.Expect(prompt, 2*time.Second)

	client.Send("monster chicken")
	out := client.Expect(prompt, 2*time.Second)
	assert.Contains(t, telnet.StripANSI(out), "Chicken (chicken)")

	client.Send("monster dragon")
	out = client.Expect(prompt, 2*time.Second)
	assert.Contains(t, telnet.StripANSI(out), "Monster `dragon` does not exist.")

	client.Send("quit")
	client.Expect("Goodbye.", 2*time.Second)
}
