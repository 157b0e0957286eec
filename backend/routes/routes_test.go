package routes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"codetrack/backend/config"
	"codetrack/backend/models"
	"codetrack/backend/routes"
	"codetrack/backend/services"
	"codetrack/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
)

func TestMain(m *testing.M) {
	cfg = &config.Config{
		JWTSecret:  "testsecret",
		ServerPort: "8080",
		InviteCode: "letmein",
	}

	var err error
	db, err = gorm.Open(sqlite.Open("file:routes_e2e?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}
	if err := utils.Migrate(db); err != nil {
		panic(err)
	}

	utils.InitLogger("")

	app = fiber.New()
	routes.SetupRoutes(app, db, cfg)

	os.Exit(m.Run())
}

func request(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(body)
			require.NoError(t, err)
			reader = bytes.NewBuffer(data)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var result map[string]interface{}
	data, _ := io.ReadAll(resp.Body)
	if len(data) > 0 {
		json.Unmarshal(data, &result)
	}
	return resp, result
}

func TestEndToEnd(t *testing.T) {
	var adminToken, memberToken string
	var chapterSlug string
	var problemIDs []float64

	t.Run("first user registers and becomes admin", func(t *testing.T) {
		resp, result := request(t, "POST", "/api/auth/register", "", map[string]string{
			"email":       "alice@example.com",
			"password":    "password123",
			"invite_code": "letmein",
		})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		adminToken = result["token"].(string)
		user := result["user"].(map[string]interface{})
		assert.True(t, user["is_admin"].(bool))
	})

	t.Run("registration closes after the first user", func(t *testing.T) {
		resp, _ := request(t, "POST", "/api/auth/register", "", map[string]string{
			"email":       "bob@example.com",
			"password":    "password123",
			"invite_code": "letmein",
		})
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("registration streak starts at one", func(t *testing.T) {
		resp, result := request(t, "GET", "/api/user/stats", adminToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.EqualValues(t, 0, result["xp"])
		assert.EqualValues(t, 1, result["level"])
		assert.EqualValues(t, 1, result["current_streak"])
	})

	t.Run("admin reopens registration", func(t *testing.T) {
		resp, _ := request(t, "PUT", "/api/admin/settings/registration", adminToken,
			map[string]bool{"open": true})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("wrong invite code is rejected", func(t *testing.T) {
		resp, _ := request(t, "POST", "/api/auth/register", "", map[string]string{
			"email":       "bob@example.com",
			"password":    "password123",
			"invite_code": "wrong",
		})
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("second user registers as a regular member", func(t *testing.T) {
		resp, result := request(t, "POST", "/api/auth/register", "", map[string]string{
			"email":       "bob@example.com",
			"password":    "password123",
			"invite_code": "letmein",
		})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		memberToken = result["token"].(string)
		user := result["user"].(map[string]interface{})
		assert.False(t, user["is_admin"].(bool))
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		resp, _ := request(t, "POST", "/api/auth/register", "", map[string]string{
			"email":       "alice@example.com",
			"password":    "password123",
			"invite_code": "letmein",
		})
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})

	t.Run("login returns a token and counts activity", func(t *testing.T) {
		resp, result := request(t, "POST", "/api/auth/login", "", map[string]string{
			"email":    "bob@example.com",
			"password": "password123",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, result["token"])
	})

	t.Run("admin creates a chapter", func(t *testing.T) {
		resp, result := request(t, "POST", "/api/admin/chapters", adminToken, map[string]interface{}{
			"title":    "Loops & Conditionals!",
			"position": 1,
		})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		chapter := result["chapter"].(map[string]interface{})
		chapterSlug = chapter["Slug"].(string)
		assert.Equal(t, "loops-conditionals", chapterSlug)
	})

	t.Run("colliding chapter title is a conflict", func(t *testing.T) {
		resp, _ := request(t, "POST", "/api/admin/chapters", adminToken, map[string]interface{}{
			"title": "loops   conditionals",
		})
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})

	t.Run("member cannot use admin routes", func(t *testing.T) {
		resp, _ := request(t, "POST", "/api/admin/chapters", memberToken, map[string]interface{}{
			"title": "Nope",
		})
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("admin creates problems with lazy tags", func(t *testing.T) {
		var chapter models.Chapter
		require.NoError(t, db.Where("slug = ?", chapterSlug).First(&chapter).Error)

		for i := 0; i < 4; i++ {
			resp, result := request(t, "POST", "/api/admin/problems", adminToken, map[string]interface{}{
				"chapter_id": chapter.ID,
				"title":      fmt.Sprintf("Problem %d", i+1),
				"difficulty": "easy",
				"points":     10,
				"tags":       []string{"Loops", "basics"},
			})
			require.Equal(t, fiber.StatusCreated, resp.StatusCode)
			problem := result["problem"].(map[string]interface{})
			problemIDs = append(problemIDs, problem["ID"].(float64))
		}

		var tagCount int64
		db.Model(&models.Tag{}).Count(&tagCount)
		assert.EqualValues(t, 2, tagCount)
	})

	t.Run("chapter list and detail", func(t *testing.T) {
		resp, _ := request(t, "GET", "/api/chapters/", memberToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp, result := request(t, "GET", "/api/chapters/"+chapterSlug, memberToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		problems := result["problems"].([]interface{})
		require.Len(t, problems, 4)
		first := problems[0].(map[string]interface{})
		assert.Equal(t, "unsolved", first["status"])

		resp, _ = request(t, "GET", "/api/chapters/no-such-chapter", memberToken, nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	problemPath := func(id float64, suffix string) string {
		return fmt.Sprintf("/api/problems/%d%s", int(id), suffix)
	}

	t.Run("opening a problem creates the attempt record", func(t *testing.T) {
		resp, result := request(t, "GET", problemPath(problemIDs[0], ""), memberToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		attempt := result["attempt"].(map[string]interface{})
		assert.Equal(t, "unsolved", attempt["status"])
		assert.NotNil(t, attempt["last_opened_at"])

		// Opening is not a streak-qualifying action and awards nothing.
		_, stats := request(t, "GET", "/api/user/stats", memberToken, nil)
		assert.EqualValues(t, 0, stats["xp"])
	})

	t.Run("unknown problem is not found", func(t *testing.T) {
		resp, _ := request(t, "GET", "/api/problems/99999", memberToken, nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("save without solving marks attempted", func(t *testing.T) {
		resp, result := request(t, "POST", problemPath(problemIDs[0], "/save"), memberToken,
			map[string]interface{}{
				"code":        "print('wip')",
				"notes":       "first try",
				"mark_solved": false,
			})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		attempt := result["attempt"].(map[string]interface{})
		assert.Equal(t, "attempted", attempt["status"])
		assert.EqualValues(t, 1, attempt["attempts"])

		_, stats := request(t, "GET", "/api/user/stats", memberToken, nil)
		assert.EqualValues(t, 0, stats["xp"])
	})

	t.Run("solving awards XP once", func(t *testing.T) {
		resp, result := request(t, "POST", problemPath(problemIDs[0], "/save"), memberToken,
			map[string]interface{}{
				"code":        "print('done')",
				"mark_solved": true,
			})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		attempt := result["attempt"].(map[string]interface{})
		assert.Equal(t, "solved", attempt["status"])
		assert.NotNil(t, attempt["solved_at"])

		_, stats := request(t, "GET", "/api/user/stats", memberToken, nil)
		assert.EqualValues(t, 10, stats["xp"])
		assert.EqualValues(t, 1, stats["level"])
		assert.EqualValues(t, 1, stats["current_streak"])

		// A re-save with the solve flag set must not award again.
		resp, _ = request(t, "POST", problemPath(problemIDs[0], "/save"), memberToken,
			map[string]interface{}{
				"code":        "print('polished')",
				"mark_solved": true,
			})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		_, stats = request(t, "GET", "/api/user/stats", memberToken, nil)
		assert.EqualValues(t, 10, stats["xp"])
	})

	t.Run("time logging accumulates per day", func(t *testing.T) {
		resp, result := request(t, "POST", problemPath(problemIDs[0], "/time"), memberToken,
			map[string]int{"seconds": 120})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.EqualValues(t, 120, result["total_time_sec"])

		resp, result = request(t, "POST", problemPath(problemIDs[0], "/time"), memberToken,
			map[string]int{"seconds": 30})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.EqualValues(t, 150, result["total_time_sec"])

		var bob models.User
		require.NoError(t, db.Where("email = ?", "bob@example.com").First(&bob).Error)

		var row models.DailyTime
		today := services.DateOf(time.Now())
		require.NoError(t, db.Where("user_id = ? AND day = ?", bob.ID, today).First(&row).Error)
		assert.Equal(t, 150, row.Seconds)

		var count int64
		db.Model(&models.DailyTime{}).Where("user_id = ?", bob.ID).Count(&count)
		assert.EqualValues(t, 1, count)
	})

	t.Run("non-positive time is rejected without mutation", func(t *testing.T) {
		for _, seconds := range []int{0, -5} {
			resp, _ := request(t, "POST", problemPath(problemIDs[0], "/time"), memberToken,
				map[string]int{"seconds": seconds})
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		}

		_, stats := request(t, "GET", "/api/user/stats", memberToken, nil)
		assert.EqualValues(t, 150, stats["total_time_sec"])
	})

	t.Run("dashboard aggregates progress and activity", func(t *testing.T) {
		resp, result := request(t, "GET", "/api/dashboard", memberToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		progress := result["chapter_progress"].([]interface{})
		require.NotEmpty(t, progress)
		loops := progress[0].(map[string]interface{})
		assert.Equal(t, chapterSlug, loops["slug"])
		assert.EqualValues(t, 1, loops["solved"])
		assert.EqualValues(t, 4, loops["total"])
		assert.EqualValues(t, 25, loops["percent"])

		activity := result["today_activity"].([]interface{})
		require.NotEmpty(t, activity)
		assert.LessOrEqual(t, len(activity), 10)
		newest := activity[0].(map[string]interface{})
		assert.Equal(t, "time_log", newest["Action"])
	})

	t.Run("bulk import rejects malformed JSON", func(t *testing.T) {
		resp, _ := request(t, "POST", "/api/admin/import", adminToken, "{not json")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("bulk import reuses chapters by slug", func(t *testing.T) {
		resp, result := request(t, "POST", "/api/admin/import", adminToken, map[string]interface{}{
			"chapters": []map[string]interface{}{
				{
					"title": "Loops & Conditionals!",
					"problems": []map[string]interface{}{
						{"title": "Imported Extra", "tags": []string{"imported"}},
					},
				},
				{
					"title":    "Recursion",
					"position": 9,
					"problems": []map[string]interface{}{
						{"title": "Fibonacci", "difficulty": "hard", "points": 30},
					},
				},
			},
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.EqualValues(t, 2, result["imported"])

		var chapterCount int64
		db.Model(&models.Chapter{}).Count(&chapterCount)
		assert.EqualValues(t, 2, chapterCount)

		// The imported problem dilutes the solved percentage: 1 of 5.
		_, dash := request(t, "GET", "/api/dashboard", memberToken, nil)
		loops := dash["chapter_progress"].([]interface{})[0].(map[string]interface{})
		assert.EqualValues(t, 5, loops["total"])
		assert.EqualValues(t, 20, loops["percent"])
	})

	t.Run("member routes require a token", func(t *testing.T) {
		resp, _ := request(t, "GET", "/api/dashboard", "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}
