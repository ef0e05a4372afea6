package artifacts_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/artifactsbot/internal/artifacts"
	"github.com/cory-johannsen/artifactsbot/internal/config"
)

func testConfig(baseURL string) config.ArtifactsConfig {
	return config.ArtifactsConfig{
		BaseURL:             baseURL,
		MaxRetries:          5,
		RetryDelay:          time.Millisecond,
		PageSize:            2,
		RequestTimeout:      5 * time.Second,
		UpdateCheckInterval: time.Minute,
	}
}

var itemPages = map[int]string{
	1: `{"data":[
		{"code":"copper_dagger","name":"Copper Dagger","level":1,"type":"weapon","effects":[{"code":"attack_fire","value":6}],
		 "craft":{"skill":"weaponcrafting","level":1,"items":[{"code":"copper_bar","quantity":6}],"quantity":1}},
		{"code":"copper_bar","name":"Copper Bar","level":1,"type":"resource","effects":[]}
	],"total":3,"page":1,"size":2,"pages":2}`,
	2: `{"data":[
		{"code":"wooden_shield","name":"Wooden Shield","level":1,"type":"shield","effects":[{"name":"res_earth","value":4}]}
	],"total":3,"page":2,"size":2,"pages":2}`,
}

const monstersPage = `{"data":[
	{"code":"chicken","name":"Chicken","level":1,"hp":60,"attack_water":4,"res_fire":0,"min_gold":0,"max_gold":3,
	 "drops":[{"code":"feather","rate":8,"min_quantity":1,"max_quantity":1}]}
],"total":1,"page":1,"size":2,"pages":1}`

func newGameServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"status":"online","version":"4.2","max_level":40,"characters_online":17}}`)
	})
	mux.HandleFunc("GET /items", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("size"))
		n, _ := strconv.Atoi(r.URL.Query().Get("page"))
		body, ok := itemPages[n]
		if !ok {
			http.Error(w, "bad page", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, body)
	})
	mux.HandleFunc("GET /monsters", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, monstersPage)
	})
	mux.HandleFunc("GET /characters/{name}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("name") {
		case "Alice":
			fmt.Fprint(w, `{"data":{"name":"Alice","level":12,"weapon_slot":"copper_dagger","ring1_slot":"","shield_slot":"wooden_shield"}}`)
		case "bad name":
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"error":{"code":422,"message":"Invalid payload."}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":{"code":404,"message":"Character not found."}}`)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Status(t *testing.T) {
	srv := newGameServer(t)
	c := artifacts.NewClient(testConfig(srv.URL), zaptest.NewLogger(t))

	st, err := c.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "online", st.Status)
	assert.Equal(t, "4.2", st.Version)
	assert.Equal(t, 40, st.MaxLevel)
	assert.Equal(t, 17, st.CharactersOnline)
}

func TestClient_Items_FollowsPages(t *testing.T) {
	srv := newGameServer(t)
	c := artifacts.NewClient(testConfig(srv.URL), zaptest.NewLogger(t))

	items, err := c.Items(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "copper_dagger", items[0].Code)
	require.NotNil(t, items[0].Craft)
	assert.Equal(t, "copper_bar", items[0].Craft.Items[0].Code)
	assert.Equal(t, "wooden_shield", items[2].Code)
	assert.Equal(t, "res_earth", items[2].Effects[0].Code, "legacy effect name is accepted")
}

func TestClient_Monsters(t *testing.T) {
	srv := newGameServer(t)
	c := artifacts.NewClient(testConfig(srv.URL), zaptest.NewLogger(t))

	monsters, err := c.Monsters(context.Background())
	require.NoError(t, err)
	require.Len(t, monsters, 1)
	assert.Equal(t, 60, monsters[0].HP)
	assert.Equal(t, 4, monsters[0].WaterAttack)
	assert.Equal(t, "feather", monsters[0].Drops[0].Code)
}

func TestClient_Character(t *testing.T) {
	srv := newGameServer(t)
	c := artifacts.NewClient(testConfig(srv.URL), zaptest.NewLogger(t))

	ch, err := c.Character(context.Background(), "Alice")
	require.NoError(t, err)
	assert.Equal(t, 12, ch.Level)
	assert.Equal(t, []string{"copper_dagger", "wooden_shield"}, ch.EquippedItemCodes())
}

func TestClient_Character_NotFound(t *testing.T) {
	srv := newGameServer(t)
	c := artifacts.NewClient(testConfig(srv.URL), zaptest.NewLogger(t))

	for _, name := range []string{"Nobody", "bad name"} {
		_, err := c.Character(context.Background(), name)
		assert.ErrorIs(t, err, artifacts.ErrCharacterNotFound, name)
	}
}

func TestClient_FetchCatalog(t *testing.T) {
	srv := newGameServer(t)
	c := artifacts.NewClient(testConfig(srv.URL), zaptest.NewLogger(t))

	reg, err := c.FetchCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4.2", reg.Version())
	assert.Equal(t, 3, reg.ItemCount())
	assert.Equal(t, 1, reg.MonsterCount())
	crafted := reg.ItemsCraftedWith("copper_bar")
	require.Len(t, crafted, 1)
	assert.Equal(t, "copper_dagger", crafted[0].Code)
}

func flakyServer(t *testing.T, failures int32, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= failures {
			w.WriteHeader(status)
			fmt.Fprintf(w, `{"error":{"code":%d,"message":"try again"}}`, status)
			return
		}
		fmt.Fprint(w, `{"data":{"status":"online","version":"1.0"}}`)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestClient_RetriesRetryableStatuses(t *testing.T) {
	for _, status := range []int{500, 503, 486, 461, 429, 409} {
		t.Run(strconv.Itoa(status), func(t *testing.T) {
			srv, calls := flakyServer(t, 2, status)
			c := artifacts.NewClient(testConfig(srv.URL), zaptest.NewLogger(t))

			st, err := c.Status(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "1.0", st.Version)
			assert.Equal(t, int32(3), calls.Load())
		})
	}
}

func TestClient_OutOfRetries(t *testing.T) {
	srv, calls := flakyServer(t, 100, http.StatusBadGateway)
	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 3
	c := artifacts.NewClient(cfg, zaptest.NewLogger(t))

	_, err := c.Status(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, artifacts.ErrOutOfRetries)
	var apiErr *artifacts.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_NonRetryableStatusFailsFast(t *testing.T) {
	srv, calls := flakyServer(t, 100, http.StatusBadRequest)
	c := artifacts.NewClient(testConfig(srv.URL), zaptest.NewLogger(t))

	_, err := c.Status(context.Background())
	var apiErr *artifacts.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Code)
	assert.Equal(t, "try again", apiErr.Message)
	assert.False(t, apiErr.Retryable())
	assert.NotErrorIs(t, err, artifacts.ErrOutOfRetries)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ErrorWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "<html>denied</html>")
	}))
	t.Cleanup(srv.Close)
	c := artifacts.NewClient(testConfig(srv.URL), zaptest.NewLogger(t))

	_, err := c.Status(context.Background())
	var apiErr *artifacts.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Forbidden", apiErr.Message)
}

func TestClient_CancelledContext(t *testing.T) {
	srv, calls := flakyServer(t, 100, http.StatusServiceUnavailable)
	cfg := testConfig(srv.URL)
	cfg.RetryDelay = time.Hour
	c := artifacts.NewClient(cfg, zaptest.NewLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Status(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, int32(1), calls.Load())
}
