package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	echoapi "github.com/bdzone/staffboard/apps/api/echo"
	"github.com/bdzone/staffboard/core/staff"
	testutil "github.com/bdzone/staffboard/tests"
)

func Test_staffApi_query(t *testing.T) {
	app := setup(t)
	token := adminToken(t)

	now := time.Now()
	mod := testutil.CreateStaff(t, staffRepo, "Ayo", staff.RoleModerator, staff.RankMod, map[string]float64{"fairness": 9}, now)
	bld := testutil.CreateStaff(t, staffRepo, "Bob", staff.RoleBuilder, "", nil, now.Add(time.Hour))
	own := testutil.CreateStaff(t, staffRepo, "Zed", staff.RoleOwner, "", nil, now.Add(2*time.Hour))

	tests := []httpTest{
		{name: "Auth required", path: "/v1/staff", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Get all, oldest first", path: "/v1/staff", token: token, wantCode: http.StatusOK,
			wantData: marchallList(t, mod, bld, own),
		},
		{
			// owner outranks both B-graded members; 5.4 beats 5 on the tie
			name: "Leaderboard ordering", path: "/v1/staff?sort=grade", token: token, wantCode: http.StatusOK,
			wantData: marchallList(t, own, mod, bld),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_staffApi_create(t *testing.T) {
	app := setup(t)
	token := adminToken(t)

	tests := []httpTest{
		{
			name: "role is required", body: []byte(`{"name": "Ayo"}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"role": "must be one of: moderator, builder, manager, owner"}),
		},
		{
			name: "unknown role", body: []byte(`{"name": "Ayo", "role": "janitor"}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"role": "must be one of: moderator, builder, manager, owner"}),
		},
		{
			name: "foreign rank", body: []byte(`{"name": "Ayo", "role": "builder", "rank": "Mod"}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"rank": "invalid rank for builder; allowed: HeadBuilder, Builder, Trial Builder"}),
		},
		{
			name: "unknown metric", body: []byte(`{"name": "Ayo", "role": "builder", "metrics": {"lol": 5}}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"metrics": "unknown metric lol for role builder"}),
		},
		{
			name: "score out of range", body: []byte(`{"name": "Ayo", "role": "builder", "metrics": {"exterior": 11}}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "created with defaults", body: []byte(`{"name": "Ayo", "role": "moderator", "metrics": {"fairness": 9}}`),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/staff", token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode != http.StatusCreated {
				return
			}
			var s staff.Staff
			if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
				t.Fatalf("unmarshalling Staff: %v", err)
			}
			if s.ID == "" {
				t.Error("no id assigned")
			}
			if s.Rank != staff.RankTrialMod {
				t.Errorf("rank = %q, want default %q", s.Rank, staff.RankTrialMod)
			}
			if len(s.Metrics) != len(staff.RoleModerator.MetricKeys()) {
				t.Errorf("len(metrics) = %d, want full schema", len(s.Metrics))
			}
			if s.OverallScore != 5.4 || s.OverallGrade != staff.GradeB {
				t.Errorf("overall = %v/%v, want 5.4/B", s.OverallScore, s.OverallGrade)
			}
		})
	}
}

func Test_staffApi_detail(t *testing.T) {
	app := setup(t)
	token := adminToken(t)

	bld := testutil.CreateStaff(t, staffRepo, "Bob", staff.RoleBuilder, staff.RankBuilder, map[string]float64{"exterior": 8})
	path := "/v1/staff/" + bld.ID
	notFound := marchallObj(t, httpErr{Error: "not found"})

	tests := []httpTest{
		{name: "retrieve unknown", method: http.MethodGet, path: "/v1/staff/nope", wantCode: http.StatusNotFound, wantData: notFound},
		{name: "retrieve", method: http.MethodGet, path: path, wantCode: http.StatusOK, wantData: marchallObj(t, bld)},
		{
			name: "update foreign rank", method: http.MethodPut, path: path,
			body: []byte(`{"rank": "Owner"}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"rank": "invalid rank for builder; allowed: HeadBuilder, Builder, Trial Builder"}),
		},
		{name: "update", method: http.MethodPut, path: path, body: []byte(`{"name": "Bobby", "rank": "HeadBuilder"}`), wantCode: http.StatusOK},
		{name: "destroy", method: http.MethodDelete, path: path, wantCode: http.StatusNoContent},
		{name: "destroy again", method: http.MethodDelete, path: path, wantCode: http.StatusNotFound, wantData: notFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.name == "update" {
				var s staff.Staff
				if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
					t.Fatalf("unmarshalling Staff: %v", err)
				}
				if s.Name != "Bobby" || s.Rank != staff.RankHeadBuilder {
					t.Errorf("update = %q/%q, want Bobby/HeadBuilder", s.Name, s.Rank)
				}
				if s.Metrics["exterior"].Score != 8 {
					t.Errorf("exterior = %v, want untouched 8", s.Metrics["exterior"].Score)
				}
			}
		})
	}
}

func Test_staffApi_scoreAndEvents(t *testing.T) {
	app := setup(t)
	token := adminToken(t)

	mod := testutil.CreateStaff(t, staffRepo, "Ayo", staff.RoleModerator, "", nil)
	now := time.Now()
	testutil.CreateEvent(t, ledgerRepo, mod.ID, "ticket_closed", 3, now)
	newest := testutil.CreateEvent(t, ledgerRepo, mod.ID, "warning_issued", -1, now.Add(time.Minute))
	testutil.CreateEvent(t, ledgerRepo, "someone-else", "ticket_closed", 100, now)

	t.Run("score", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.StaffScoreResponse{StaffID: mod.ID, Score: 2}),
		}
		req, rec := newAuthRequest(http.MethodGet, "/v1/staff/"+mod.ID+"/score", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("events, newest first", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: marchallList(t, newest),
		}
		req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/v1/staff/%s/events?limit=1", mod.ID), token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func Test_staffApi_queryRoles(t *testing.T) {
	app := setup(t)

	roles := make([]echoapi.RoleInfo, 0, len(staff.AllRoles))
	for _, role := range staff.AllRoles {
		roles = append(roles, echoapi.RoleInfo{
			Role:        role,
			Privileged:  role.Privileged(),
			Ranks:       role.AllowedRanks(),
			DefaultRank: role.DefaultRank(),
			MetricKeys:  role.MetricKeys(),
		})
	}
	tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, roles)}

	req, rec := newAuthRequest(http.MethodGet, "/v1/staff/roles", adminToken(t))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}
