package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	controller "github.com/harmonix-lab/taskbeat/pkg/controller/http"
	"github.com/harmonix-lab/taskbeat/pkg/domain/model/policy"
	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
	"github.com/harmonix-lab/taskbeat/pkg/repository/memory"
	"github.com/harmonix-lab/taskbeat/pkg/service/notify"
	"github.com/harmonix-lab/taskbeat/pkg/usecase"
)

const day = 24 * time.Hour

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestServer(t *testing.T) (*httptest.Server, *clock) {
	t.Helper()

	table, err := policy.NewTable(map[types.RoleID]policy.Rule{
		"role-va": {
			Name: "VA",
			Tasks: map[types.TaskType]time.Duration{
				"skit": 7 * day,
			},
			Extension: policy.FlatExtension(2 * day),
		},
	}, nil)
	gt.NoError(t, err).Required()

	clk := &clock{t: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
	uc := usecase.New(memory.New(), table,
		usecase.WithNotifier(notify.NewRecorder()),
		usecase.WithClock(clk.now),
	)

	srv := httptest.NewServer(controller.New(uc))
	t.Cleanup(srv.Close)
	return srv, clk
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func do(t *testing.T, method, url string, body any) (int, apiResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		gt.NoError(t, json.NewEncoder(&buf).Encode(body)).Required()
	}
	req, err := http.NewRequest(method, url, &buf)
	gt.NoError(t, err).Required()

	resp, err := http.DefaultClient.Do(req)
	gt.NoError(t, err).Required()
	defer resp.Body.Close()

	var parsed apiResponse
	gt.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed)).Required()
	return resp.StatusCode, parsed
}

func TestAssignmentLifecycleOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	// Create an assignment
	code, resp := do(t, http.MethodPost, srv.URL+"/api/assignments", map[string]string{
		"member_id": "M100",
		"username":  "aoi",
		"role_id":   "role-va",
		"role_name": "VA",
		"task_type": "skit",
		"task_name": "October skit",
	})
	gt.Value(t, code).Equal(http.StatusCreated)
	gt.Bool(t, resp.Success).True()

	var created struct {
		ID types.AssignmentID `json:"ID"`
	}
	gt.NoError(t, json.Unmarshal(resp.Data, &created)).Required()
	gt.Value(t, string(created.ID)).NotEqual("")

	// Pending list shows it
	code, resp = do(t, http.MethodGet, srv.URL+"/api/assignments/pending/M100", nil)
	gt.Value(t, code).Equal(http.StatusOK)

	var pending []json.RawMessage
	gt.NoError(t, json.Unmarshal(resp.Data, &pending)).Required()
	gt.Array(t, pending).Length(1)

	// Extension approve, then a second approval conflicts
	code, _ = do(t, http.MethodPost, srv.URL+"/api/assignments/"+string(created.ID)+"/extend/approve", nil)
	gt.Value(t, code).Equal(http.StatusOK)

	code, _ = do(t, http.MethodPost, srv.URL+"/api/assignments/"+string(created.ID)+"/extend/approve", nil)
	gt.Value(t, code).Equal(http.StatusConflict)

	// Complete it
	code, _ = do(t, http.MethodPost, srv.URL+"/api/assignments/"+string(created.ID)+"/complete", nil)
	gt.Value(t, code).Equal(http.StatusOK)

	code, _ = do(t, http.MethodPost, srv.URL+"/api/assignments/"+string(created.ID)+"/complete", nil)
	gt.Value(t, code).Equal(http.StatusConflict)
}

func TestSweepOverHTTP(t *testing.T) {
	srv, clk := newTestServer(t)

	code, _ := do(t, http.MethodPost, srv.URL+"/api/assignments", map[string]string{
		"member_id": "M100",
		"username":  "aoi",
		"role_id":   "role-va",
		"role_name": "VA",
		"task_type": "skit",
	})
	gt.Value(t, code).Equal(http.StatusCreated)

	clk.advance(8 * day)

	code, resp := do(t, http.MethodPost, srv.URL+"/api/sweep", nil)
	gt.Value(t, code).Equal(http.StatusOK)

	var result struct {
		OverdueProcessed int `json:"OverdueProcessed"`
	}
	gt.NoError(t, json.Unmarshal(resp.Data, &result)).Required()
	gt.Value(t, result.OverdueProcessed).Equal(1)

	// The user accrued a strike
	code, resp = do(t, http.MethodGet, srv.URL+"/api/users/M100", nil)
	gt.Value(t, code).Equal(http.StatusOK)

	var profile struct {
		User struct {
			Strikes int `json:"Strikes"`
		} `json:"User"`
		Late int `json:"Late"`
	}
	gt.NoError(t, json.Unmarshal(resp.Data, &profile)).Required()
	gt.Value(t, profile.User.Strikes).Equal(1)
	gt.Value(t, profile.Late).Equal(1)
}

func TestValidationErrorsOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	// Unknown task type for role
	code, _ := do(t, http.MethodPost, srv.URL+"/api/assignments", map[string]string{
		"member_id": "M100",
		"username":  "aoi",
		"role_id":   "role-va",
		"task_type": "full_mv",
	})
	gt.Value(t, code).Equal(http.StatusBadRequest)

	// Unknown member profile
	code, _ = do(t, http.MethodGet, srv.URL+"/api/users/M-unknown", nil)
	gt.Value(t, code).Equal(http.StatusNotFound)

	// Unknown assignment
	code, _ = do(t, http.MethodPost, srv.URL+"/api/assignments/nope/complete", nil)
	gt.Value(t, code).Equal(http.StatusNotFound)

	// Unknown status value in history filter
	code, _ = do(t, http.MethodGet, srv.URL+"/api/assignments?status=DONE", nil)
	gt.Value(t, code).Equal(http.StatusBadRequest)

	// Valid status filter passes through
	code, _ = do(t, http.MethodGet, srv.URL+"/api/assignments?status=PENDING", nil)
	gt.Value(t, code).Equal(http.StatusOK)
}
