package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"founder-engine/config"
	"founder-engine/generator"
	"founder-engine/models"
	"founder-engine/routes"
	"founder-engine/utils"
)

var loggerOnce sync.Once

func setupAPI(t *testing.T) *gin.Engine {
	t.Helper()
	loggerOnce.Do(func() {
		require.NoError(t, utils.InitLogger(config.AppConfig{LogLevel: "error"}))
	})
	gin.SetMode(gin.TestMode)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Action{}, &models.DailyResult{}))

	// No API key: heuristic-only generation keeps tests deterministic.
	gen := generator.New("", "", 0, nil)
	return routes.SetupRouter(db, gen)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func createUser(t *testing.T, r *gin.Engine, id, goal string) {
	t.Helper()
	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/users", gin.H{"user_id": id, "goal_text": goal})
	require.Equal(t, http.StatusOK, w.Code)
}

type actionsData struct {
	Date    string          `json:"date"`
	Actions []models.Action `json:"actions"`
}

func generateActions(t *testing.T, r *gin.Engine, id string) actionsData {
	t.Helper()
	w, env := doJSON(t, r, http.MethodPost, "/api/v1/actions/generate", gin.H{"user_id": id})
	require.Equal(t, http.StatusOK, w.Code)
	var data actionsData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data
}

func TestCreateUser(t *testing.T) {
	r := setupAPI(t)

	t.Run("creates with fresh state", func(t *testing.T) {
		w, env := doJSON(t, r, http.MethodPost, "/api/v1/users", gin.H{"user_id": "founder1", "goal_text": "Finish my thesis"})
		require.Equal(t, http.StatusOK, w.Code)
		var user models.User
		require.NoError(t, json.Unmarshal(env.Data, &user))
		assert.Equal(t, "founder1", user.ID)
		assert.Equal(t, 1, user.Level)
		assert.Equal(t, 0, user.XP)
		assert.Equal(t, 1, user.Difficulty)
	})

	t.Run("duplicate id conflicts", func(t *testing.T) {
		w, env := doJSON(t, r, http.MethodPost, "/api/v1/users", gin.H{"user_id": "founder1", "goal_text": "Another goal entirely"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, utils.CodeConflict, env.Code)
	})

	t.Run("rejects short ids and goals", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodPost, "/api/v1/users", gin.H{"user_id": "ab", "goal_text": "Finish my thesis"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		w, _ = doJSON(t, r, http.MethodPost, "/api/v1/users", gin.H{"user_id": "founder2", "goal_text": "hi"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("strips markup from the goal", func(t *testing.T) {
		w, env := doJSON(t, r, http.MethodPost, "/api/v1/users", gin.H{"user_id": "founder3", "goal_text": "<b>Grow revenue</b> to 10k"})
		require.Equal(t, http.StatusOK, w.Code)
		var user models.User
		require.NoError(t, json.Unmarshal(env.Data, &user))
		assert.Equal(t, "Grow revenue to 10k", user.GoalText)
	})
}

func TestGetUser(t *testing.T) {
	r := setupAPI(t)
	createUser(t, r, "founder1", "Finish my thesis")

	w, _ := doJSON(t, r, http.MethodGet, "/api/v1/users/founder1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/users/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, utils.CodeNotFound, env.Code)
}

func TestGenerateToday(t *testing.T) {
	r := setupAPI(t)
	createUser(t, r, "founder1", "Finish my thesis")

	t.Run("unknown user", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodPost, "/api/v1/actions/generate", gin.H{"user_id": "ghost"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("first call creates a batch within contract", func(t *testing.T) {
		data := generateActions(t, r, "founder1")
		require.GreaterOrEqual(t, len(data.Actions), 3)
		require.LessOrEqual(t, len(data.Actions), 5)
		for _, a := range data.Actions {
			assert.True(t, a.NonNegotiable)
			assert.Nil(t, a.Completed)
			assert.Equal(t, data.Date, a.Date)
		}
	})

	t.Run("second call returns the same batch", func(t *testing.T) {
		first := generateActions(t, r, "founder1")
		second := generateActions(t, r, "founder1")
		require.Equal(t, len(first.Actions), len(second.Actions))
		for i := range first.Actions {
			assert.Equal(t, first.Actions[i].ID, second.Actions[i].ID)
			assert.Equal(t, first.Actions[i].Text, second.Actions[i].Text)
		}
	})
}

type checkInData struct {
	Date       string          `json:"date"`
	XPDelta    int             `json:"xp_delta"`
	Penalty    int             `json:"penalty"`
	XP         int             `json:"xp"`
	Level      int             `json:"level"`
	Streak     int             `json:"streak"`
	Debt       int             `json:"debt"`
	Difficulty int             `json:"difficulty"`
	Verdict    string          `json:"verdict"`
	Actions    []models.Action `json:"actions"`
}

func TestCheckIn(t *testing.T) {
	r := setupAPI(t)
	createUser(t, r, "founder1", "Finish my thesis")

	t.Run("before generation is a bad request", func(t *testing.T) {
		w, env := doJSON(t, r, http.MethodPost, "/api/v1/checkin", gin.H{
			"user_id": "founder1",
			"updates": []gin.H{{"action_id": "whatever", "completed": true}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, utils.CodeNoActionsYet, env.Code)
	})

	batch := generateActions(t, r, "founder1")
	require.Len(t, batch.Actions, 4)

	t.Run("unknown user", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodPost, "/api/v1/checkin", gin.H{
			"user_id": "ghost",
			"updates": []gin.H{},
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("clean sweep is judged and persisted", func(t *testing.T) {
		updates := make([]gin.H, 0, len(batch.Actions))
		for _, a := range batch.Actions {
			updates = append(updates, gin.H{"action_id": a.ID, "completed": true})
		}
		w, env := doJSON(t, r, http.MethodPost, "/api/v1/checkin", gin.H{"user_id": "founder1", "updates": updates})
		require.Equal(t, http.StatusOK, w.Code)

		var data checkInData
		require.NoError(t, json.Unmarshal(env.Data, &data))
		// Generic heuristic set: weights 1.0+1.4+1.3+1.2 at difficulty 1.
		assert.Equal(t, 134, data.XPDelta)
		assert.Equal(t, 0, data.Penalty)
		assert.Equal(t, 134, data.XP)
		assert.Equal(t, 1, data.Level)
		assert.Equal(t, 1, data.Streak)
		assert.Equal(t, 0, data.Debt)
		assert.Equal(t, 2, data.Difficulty)
		assert.Contains(t, data.Verdict, "executed hard")
		for _, a := range data.Actions {
			require.NotNil(t, a.Completed)
			assert.True(t, *a.Completed)
			assert.NotNil(t, a.CompletedAt)
		}

		// User state must match the judgement.
		_, userEnv := doJSON(t, r, http.MethodGet, "/api/v1/users/founder1", nil)
		var user models.User
		require.NoError(t, json.Unmarshal(userEnv.Data, &user))
		assert.Equal(t, 134, user.XP)
		assert.Equal(t, 1, user.Streak)
		assert.Equal(t, 2, user.Difficulty)
	})

	t.Run("second check-in upserts the daily result", func(t *testing.T) {
		updates := make([]gin.H, 0, len(batch.Actions))
		for _, a := range batch.Actions {
			updates = append(updates, gin.H{"action_id": a.ID, "completed": true})
		}
		w, env := doJSON(t, r, http.MethodPost, "/api/v1/checkin", gin.H{"user_id": "founder1", "updates": updates})
		require.Equal(t, http.StatusOK, w.Code)

		var data checkInData
		require.NoError(t, json.Unmarshal(env.Data, &data))
		// Judged from the already-updated state: difficulty 2, streak 1.
		assert.Equal(t, 139, data.XPDelta)
		assert.Equal(t, 273, data.XP)
		assert.Equal(t, 2, data.Streak)
		assert.Equal(t, 3, data.Difficulty)

		_, histEnv := doJSON(t, r, http.MethodGet, "/api/v1/history/founder1", nil)
		var hist struct {
			Results []models.DailyResult `json:"results"`
		}
		require.NoError(t, json.Unmarshal(histEnv.Data, &hist))
		require.Len(t, hist.Results, 1)
		assert.Equal(t, 139, hist.Results[0].XPDelta)
	})

	t.Run("unknown action ids are ignored", func(t *testing.T) {
		w, env := doJSON(t, r, http.MethodPost, "/api/v1/checkin", gin.H{
			"user_id": "founder1",
			"updates": []gin.H{
				{"action_id": "not-a-real-action", "completed": false},
				{"action_id": batch.Actions[0].ID, "completed": true},
			},
		})
		require.Equal(t, http.StatusOK, w.Code)
		var data checkInData
		require.NoError(t, json.Unmarshal(env.Data, &data))
		// All four actions are still marked from the earlier sweep.
		assert.Equal(t, 0, data.Penalty)
		for _, a := range data.Actions {
			require.NotNil(t, a.Completed)
			assert.True(t, *a.Completed)
		}
	})
}

func TestHistory(t *testing.T) {
	r := setupAPI(t)
	createUser(t, r, "founder1", "Finish my thesis")

	t.Run("unknown user", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodGet, "/api/v1/history/ghost", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("empty history is an empty list", func(t *testing.T) {
		w, env := doJSON(t, r, http.MethodGet, "/api/v1/history/founder1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var hist struct {
			Results []models.DailyResult `json:"results"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &hist))
		assert.Empty(t, hist.Results)
	})
}

func TestStatsAndHealth(t *testing.T) {
	r := setupAPI(t)
	createUser(t, r, "founder1", "Finish my thesis")

	w, env := doJSON(t, r, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		UserCount int64 `json:"user_count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(1), stats.UserCount)

	w, _ = doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = doJSON(t, r, http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, utils.CodeRouteNotFound, env.Code)
}
