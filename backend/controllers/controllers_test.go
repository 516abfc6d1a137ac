package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"socdocs/backend/config"
	"socdocs/backend/models"
	"socdocs/backend/routes"
	"socdocs/backend/utils"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB, *config.Config) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))

	cfg := &config.Config{
		JWTSecret:       "test-secret",
		ClassEnrollCode: "SOC101",
	}

	app := fiber.New()
	routes.SetupRoutes(app, db, cfg, utils.InitLogger())
	return app, db, cfg
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(data)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return resp, result
}

func registerUser(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	resp, result := doJSON(t, app, "POST", "/api/auth/register", "", map[string]interface{}{
		"username":   username,
		"email":      username + "@example.com",
		"password":   "hunter22",
		"class_code": "SOC101",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	token, _ := result["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func staffToken(t *testing.T, db *gorm.DB, cfg *config.Config, username string) string {
	t.Helper()
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         "staff",
	}
	require.NoError(t, db.Create(&user).Error)
	token, err := utils.GenerateJWTToken(user.ID, cfg)
	require.NoError(t, err)
	return token
}

func TestRegisterRequiresClassCode(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, result := doJSON(t, app, "POST", "/api/auth/register", "", map[string]interface{}{
		"username":   "alice",
		"email":      "alice@example.com",
		"password":   "hunter22",
		"class_code": "WRONG",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid class code", result["error"])
}

func TestRegisterFailsClosedWithoutConfiguredCode(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))

	cfg := &config.Config{JWTSecret: "test-secret"} // no enroll code set
	app := fiber.New()
	routes.SetupRoutes(app, db, cfg, utils.InitLogger())

	resp, result := doJSON(t, app, "POST", "/api/auth/register", "", map[string]interface{}{
		"username":   "alice",
		"email":      "alice@example.com",
		"password":   "hunter22",
		"class_code": "",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Class enrollment is currently closed", result["error"])
}

func TestTeamAndDraftVisibilityScenario(t *testing.T) {
	app, db, cfg := newTestApp(t)

	// student A creates team RedTeam, gets a join code
	tokenA := registerUser(t, app, "alice")
	resp, result := doJSON(t, app, "POST", "/api/teams", tokenA, map[string]interface{}{
		"name": "RedTeam",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	team := result["team"].(map[string]interface{})
	joinCode := team["join_code"].(string)
	require.NotEmpty(t, joinCode)

	// student B joins with the code
	tokenB := registerUser(t, app, "bob")
	resp, result = doJSON(t, app, "POST", "/api/teams/join", tokenB, map[string]interface{}{
		"join_code": joinCode,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "RedTeam", result["team"].(map[string]interface{})["name"])

	// A creates a draft doc for the team
	resp, result = doJSON(t, app, "POST", "/api/docs", tokenA, map[string]interface{}{
		"title": "IR Runbook",
		"body":  "step one",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	slug := result["page"].(map[string]interface{})["slug"].(string)

	// teammate B can view it
	resp, _ = doJSON(t, app, "GET", "/api/docs/"+slug, tokenB, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// student C with no team gets not-found, never forbidden
	tokenC := registerUser(t, app, "carol")
	resp, _ = doJSON(t, app, "GET", "/api/docs/"+slug, tokenC, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// anonymous viewer too
	resp, _ = doJSON(t, app, "GET", "/api/docs/"+slug, "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// staff D sees everything
	tokenD := staffToken(t, db, cfg, "instructor")
	resp, _ = doJSON(t, app, "GET", "/api/docs/"+slug, tokenD, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestPublishPolicyScenario(t *testing.T) {
	app, db, cfg := newTestApp(t)

	tokenA := registerUser(t, app, "alice")
	resp, _ := doJSON(t, app, "POST", "/api/teams", tokenA, map[string]interface{}{
		"name": "RedTeam",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, result := doJSON(t, app, "POST", "/api/policies", tokenA, map[string]interface{}{
		"title":    "Access Control Policy",
		"content":  "least privilege",
		"category": "AC",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	slug := result["policy"].(map[string]interface{})["slug"].(string)

	// draft is hidden from anonymous viewers
	resp, _ = doJSON(t, app, "GET", "/api/policies/"+slug, "", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// instructor publishes it
	tokenStaff := staffToken(t, db, cfg, "instructor")
	resp, _ = doJSON(t, app, "POST", "/api/policies/"+slug+"/publish", tokenStaff, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// the previously blocked anonymous viewer can now see it
	resp, result = doJSON(t, app, "GET", "/api/policies/"+slug, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	policy := result["policy"].(map[string]interface{})
	assert.Equal(t, "class", policy["visibility"])
	assert.Equal(t, true, policy["approved"])
}

func TestGradingFlow(t *testing.T) {
	app, db, cfg := newTestApp(t)

	tokenA := registerUser(t, app, "alice")
	tokenStaff := staffToken(t, db, cfg, "instructor")

	// staff creates a milestone with weighted criteria
	resp, result := doJSON(t, app, "POST", "/api/admin/milestones", tokenStaff, map[string]interface{}{
		"title":      "Deploy SIEM",
		"max_points": 100,
		"criteria": []map[string]interface{}{
			{"label": "Completeness", "max_points": 10, "weight": 1.0},
			{"label": "Clarity", "max_points": 10, "weight": 0.5},
		},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	milestoneID := int(result["milestone"].(map[string]interface{})["id"].(float64))

	// student submits
	resp, result = doJSON(t, app, "POST", "/api/milestones/"+itoa(milestoneID)+"/submit", tokenA, map[string]interface{}{
		"notes": "done, see wiki",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	submissionID := int(result["submission"].(map[string]interface{})["id"].(float64))

	// students cannot reach the grading endpoints
	resp, _ = doJSON(t, app, "GET", "/api/admin/submissions/"+itoa(submissionID)+"/grade", tokenA, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// staff opens the sheet: zero-point rows appear per criterion
	resp, result = doJSON(t, app, "GET", "/api/admin/submissions/"+itoa(submissionID)+"/grade", tokenStaff, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	rows := result["rows"].([]interface{})
	require.Len(t, rows, 2)

	points := map[string]float64{}
	for _, raw := range rows {
		row := raw.(map[string]interface{})
		id := itoa(int(row["criterion_id"].(float64)))
		if row["label"] == "Completeness" {
			points[id] = 8
		} else {
			points[id] = 10
		}
	}

	resp, result = doJSON(t, app, "POST", "/api/admin/submissions/"+itoa(submissionID)+"/grade", tokenStaff, map[string]interface{}{
		"points": points,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	submission := result["submission"].(map[string]interface{})
	assert.Equal(t, 13.0, submission["score"])
	assert.Equal(t, true, submission["graded"])

	// the student sees the score
	resp, result = doJSON(t, app, "GET", "/api/scores", tokenA, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	scores := result["scores"].([]interface{})
	require.Len(t, scores, 1)
	assert.Equal(t, 13.0, scores[0].(map[string]interface{})["score"])
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
