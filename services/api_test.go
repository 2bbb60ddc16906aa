package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/theBenForce/CareerCraft-sub000/models"
	"github.com/theBenForce/CareerCraft-sub000/repository"
	"github.com/theBenForce/CareerCraft-sub000/storage"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	ts     *httptest.Server
	client *http.Client
	store  *repository.Store
}

// newTestEnv boots a full server over an in-memory database, one per
// backend. The API contract is identical either way, so every test in this
// file runs against both.
func newTestEnv(t *testing.T, useDocStore bool) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	var store *repository.Store
	if useDocStore {
		if err := repository.MigrateDocuments(db); err != nil {
			t.Fatalf("failed to migrate: %v", err)
		}
		store = repository.NewDocStore(repository.NewDocumentStore(db))
	} else {
		if err := repository.Migrate(db); err != nil {
			t.Fatalf("failed to migrate: %v", err)
		}
		store = repository.NewGormStore(db)
	}

	uploader, err := storage.NewLocal(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	config := &Config{
		JWT:       JWTConfig{Secret: "test-secret"},
		WebSocket: WebSocketConfig{AllowedOrigins: ""},
	}
	server := NewServer(config, store, db, uploader)
	ts := httptest.NewServer(server.SetupRoutes())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}

	return &testEnv{
		ts:     ts,
		client: &http.Client{Jar: jar},
		store:  store,
	}
}

func eachBackend(t *testing.T, fn func(t *testing.T, env *testEnv)) {
	t.Run("relational", func(t *testing.T) {
		fn(t, newTestEnv(t, false))
	})
	t.Run("document", func(t *testing.T) {
		fn(t, newTestEnv(t, true))
	})
}

func (env *testEnv) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, env.ts.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := env.client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil && err != io.EOF {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.StatusCode, decoded
}

// signup completes first-run setup and logs the user in.
func (env *testEnv) signup(t *testing.T) string {
	t.Helper()

	status, resp := env.do(t, http.MethodPost, "/api/setup", map[string]any{
		"email":     "peter@initech.test",
		"password":  "s3cret-pass",
		"firstName": "Peter",
		"lastName":  "Gibbons",
	})
	if status != http.StatusCreated {
		t.Fatalf("setup status = %d, body %v", status, resp)
	}
	userID := resp["user"].(map[string]any)["id"].(string)

	status, resp = env.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "peter@initech.test",
		"password": "s3cret-pass",
	})
	if status != http.StatusOK {
		t.Fatalf("login status = %d, body %v", status, resp)
	}
	return userID
}

func (env *testEnv) createCompany(t *testing.T, name string) string {
	t.Helper()
	status, resp := env.do(t, http.MethodPost, "/api/companies", map[string]any{"name": name})
	if status != http.StatusCreated {
		t.Fatalf("create company status = %d, body %v", status, resp)
	}
	return resp["company"].(map[string]any)["id"].(string)
}

func TestSetupRunsOnlyOnce(t *testing.T) {
	eachBackend(t, func(t *testing.T, env *testEnv) {
		status, resp := env.do(t, http.MethodGet, "/api/setup", nil)
		if status != http.StatusOK || resp["setupRequired"] != true {
			t.Fatalf("setup status check = %d, body %v", status, resp)
		}

		env.signup(t)

		status, resp = env.do(t, http.MethodPost, "/api/setup", map[string]any{
			"email":    "second@initech.test",
			"password": "whatever",
		})
		if status != http.StatusBadRequest {
			t.Fatalf("second setup status = %d, want 400", status)
		}
		if resp["error"] != "Setup has already been completed" {
			t.Fatalf("error = %q", resp["error"])
		}

		status, resp = env.do(t, http.MethodGet, "/api/setup", nil)
		if status != http.StatusOK || resp["setupRequired"] != false {
			t.Fatalf("setup status after signup = %d, body %v", status, resp)
		}
	})
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	eachBackend(t, func(t *testing.T, env *testEnv) {
		status, resp := env.do(t, http.MethodGet, "/api/companies", nil)
		if status != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", status)
		}
		if resp["error"] != "Unauthorized" {
			t.Fatalf("error = %q, want Unauthorized", resp["error"])
		}
	})
}

func TestCompanyCRUD(t *testing.T) {
	eachBackend(t, func(t *testing.T, env *testEnv) {
		userID := env.signup(t)

		// Required field enforced.
		status, _ := env.do(t, http.MethodPost, "/api/companies", map[string]any{"industry": "Software"})
		if status != http.StatusBadRequest {
			t.Fatalf("create without name status = %d, want 400", status)
		}

		status, resp := env.do(t, http.MethodPost, "/api/companies", map[string]any{
			"name":     "Initech",
			"industry": "Software",
		})
		if status != http.StatusCreated {
			t.Fatalf("create status = %d, body %v", status, resp)
		}
		company := resp["company"].(map[string]any)
		if company["userId"] != userID {
			t.Errorf("userId = %v, want the caller's id", company["userId"])
		}
		id := company["id"].(string)

		status, resp = env.do(t, http.MethodGet, "/api/companies/"+id, nil)
		if status != http.StatusOK {
			t.Fatalf("get status = %d", status)
		}
		if resp["company"].(map[string]any)["name"] != "Initech" {
			t.Errorf("name = %v", resp["company"].(map[string]any)["name"])
		}

		// Partial update leaves other fields alone.
		status, resp = env.do(t, http.MethodPut, "/api/companies/"+id, map[string]any{"location": "Remote"})
		if status != http.StatusOK {
			t.Fatalf("update status = %d, body %v", status, resp)
		}
		company = resp["company"].(map[string]any)
		if company["location"] != "Remote" || company["industry"] != "Software" {
			t.Errorf("after update: %v", company)
		}

		status, resp = env.do(t, http.MethodGet, "/api/companies", nil)
		if status != http.StatusOK {
			t.Fatalf("list status = %d", status)
		}
		if resp["count"].(float64) != 1 {
			t.Errorf("count = %v, want 1", resp["count"])
		}

		status, _ = env.do(t, http.MethodDelete, "/api/companies/"+id, nil)
		if status != http.StatusOK {
			t.Fatalf("delete status = %d", status)
		}
		status, _ = env.do(t, http.MethodGet, "/api/companies/"+id, nil)
		if status != http.StatusNotFound {
			t.Fatalf("get after delete status = %d, want 404", status)
		}
	})
}

func TestOtherUsersRecordsAreInvisible(t *testing.T) {
	eachBackend(t, func(t *testing.T, env *testEnv) {
		env.signup(t)

		// A second account can't be created through the API, so seed the
		// other user's data directly.
		hashed, err := bcrypt.GenerateFromPassword([]byte("other-pass"), bcrypt.DefaultCost)
		if err != nil {
			t.Fatal(err)
		}
		other := &models.User{Email: "other@example.test", Password: string(hashed)}
		if err := env.store.Users.Create(context.Background(), other); err != nil {
			t.Fatal(err)
		}
		foreign := &models.Company{UserID: other.ID, Name: "Foreign Corp"}
		if err := env.store.Companies.Create(context.Background(), foreign); err != nil {
			t.Fatal(err)
		}

		status, _ := env.do(t, http.MethodGet, "/api/companies/"+foreign.ID, nil)
		if status != http.StatusNotFound {
			t.Fatalf("status = %d, want 404 for another user's record", status)
		}
		status, _ = env.do(t, http.MethodPut, "/api/companies/"+foreign.ID, map[string]any{"name": "Taken Over"})
		if status != http.StatusNotFound {
			t.Fatalf("update status = %d, want 404", status)
		}
		status, _ = env.do(t, http.MethodDelete, "/api/companies/"+foreign.ID, nil)
		if status != http.StatusNotFound {
			t.Fatalf("delete status = %d, want 404", status)
		}

		status, resp := env.do(t, http.MethodGet, "/api/companies", nil)
		if status != http.StatusOK || resp["count"].(float64) != 0 {
			t.Fatalf("list = %d %v, foreign record must not appear", status, resp)
		}
	})
}

func TestActivityCannotBeReparentedOntoForeignRecords(t *testing.T) {
	eachBackend(t, func(t *testing.T, env *testEnv) {
		env.signup(t)

		hashed, err := bcrypt.GenerateFromPassword([]byte("other-pass"), bcrypt.DefaultCost)
		if err != nil {
			t.Fatal(err)
		}
		other := &models.User{Email: "other@example.test", Password: string(hashed)}
		if err := env.store.Users.Create(context.Background(), other); err != nil {
			t.Fatal(err)
		}
		foreignCompany := &models.Company{UserID: other.ID, Name: "Foreign Corp", Notes: "private"}
		if err := env.store.Companies.Create(context.Background(), foreignCompany); err != nil {
			t.Fatal(err)
		}
		foreignApp := &models.JobApplication{
			UserID: other.ID, CompanyID: foreignCompany.ID,
			Position: "CTO", Status: models.StatusApplied, Priority: "medium",
		}
		if err := env.store.JobApplications.Create(context.Background(), foreignApp); err != nil {
			t.Fatal(err)
		}

		status, resp := env.do(t, http.MethodPost, "/api/activities", map[string]any{
			"type": "EMAIL",
			"date": "2026-08-01",
		})
		if status != http.StatusCreated {
			t.Fatalf("create activity status = %d, body %v", status, resp)
		}
		activityID := resp["activity"].(map[string]any)["id"].(string)

		status, resp = env.do(t, http.MethodPut, "/api/activities/"+activityID, map[string]any{
			"companyId": foreignCompany.ID,
		})
		if status != http.StatusNotFound {
			t.Fatalf("update with foreign companyId = %d %v, want 404", status, resp)
		}
		status, resp = env.do(t, http.MethodPut, "/api/activities/"+activityID, map[string]any{
			"jobApplicationId": foreignApp.ID,
		})
		if status != http.StatusNotFound {
			t.Fatalf("update with foreign jobApplicationId = %d %v, want 404", status, resp)
		}

		// The activity stays unattached and never embeds the other user's data.
		status, resp = env.do(t, http.MethodGet, "/api/activities/"+activityID, nil)
		if status != http.StatusOK {
			t.Fatalf("get activity status = %d", status)
		}
		activity := resp["activity"].(map[string]any)
		if ref, ok := activity["companyId"]; ok && ref != nil && ref != "" {
			t.Fatalf("companyId = %v, want unset", ref)
		}
		if embedded, ok := activity["company"]; ok && embedded != nil {
			t.Fatalf("embedded company = %v, want none", embedded)
		}
	})
}

func TestTagNameUniquePerUser(t *testing.T) {
	eachBackend(t, func(t *testing.T, env *testEnv) {
		env.signup(t)

		status, _ := env.do(t, http.MethodPost, "/api/tags", map[string]any{"name": "remote"})
		if status != http.StatusCreated {
			t.Fatalf("create status = %d", status)
		}
		status, resp := env.do(t, http.MethodPost, "/api/tags", map[string]any{"name": "remote"})
		if status != http.StatusConflict {
			t.Fatalf("duplicate status = %d, want 409", status)
		}
		if resp["error"] != "A tag with this name already exists" {
			t.Fatalf("error = %q", resp["error"])
		}
	})
}

func TestTagRenameRejectsEmptyName(t *testing.T) {
	eachBackend(t, func(t *testing.T, env *testEnv) {
		env.signup(t)

		status, resp := env.do(t, http.MethodPost, "/api/tags", map[string]any{"name": "remote"})
		if status != http.StatusCreated {
			t.Fatalf("create status = %d", status)
		}
		tagID := resp["tag"].(map[string]any)["id"].(string)

		for _, body := range []map[string]any{
			{"name": nil},
			{"name": ""},
		} {
			status, resp = env.do(t, http.MethodPut, "/api/tags/"+tagID, body)
			if status != http.StatusBadRequest {
				t.Fatalf("rename with %v = %d %v, want 400", body, status, resp)
			}
			if resp["error"] != "Tag name is required" {
				t.Fatalf("error = %q", resp["error"])
			}
		}

		// The stored name survives the rejected renames.
		status, resp = env.do(t, http.MethodGet, "/api/tags/"+tagID, nil)
		if status != http.StatusOK || resp["tag"].(map[string]any)["name"] != "remote" {
			t.Fatalf("get = %d %v", status, resp)
		}
	})
}

func TestLinkRequiresExactlyOneParent(t *testing.T) {
	eachBackend(t, func(t *testing.T, env *testEnv) {
		env.signup(t)
		companyID := env.createCompany(t, "Initech")

		status, resp := env.do(t, http.MethodPost, "/api/links", map[string]any{
			"url": "https://initech.test",
		})
		if status != http.StatusBadRequest {
			t.Fatalf("no parent status = %d, want 400", status)
		}
		want := "Exactly one of companyId, contactId, or jobApplicationId must be provided"
		if resp["error"] != want {
			t.Fatalf("error = %q", resp["error"])
		}

		status, resp = env.do(t, http.MethodPost, "/api/contacts", map[string]any{"lastName": "Gibbons"})
		if status != http.StatusCreated {
			t.Fatalf("create contact status = %d", status)
		}
		contactID := resp["contact"].(map[string]any)["id"].(string)

		status, resp = env.do(t, http.MethodPost, "/api/links", map[string]any{
			"url":       "https://initech.test",
			"companyId": companyID,
			"contactId": contactID,
		})
		if status != http.StatusBadRequest || resp["error"] != want {
			t.Fatalf("two parents = %d %q", status, resp["error"])
		}

		status, _ = env.do(t, http.MethodPost, "/api/links", map[string]any{
			"url":       "https://initech.test",
			"companyId": companyID,
		})
		if status != http.StatusCreated {
			t.Fatalf("single parent status = %d, want 201", status)
		}
	})
}

func TestContactTagAttachDetach(t *testing.T) {
	eachBackend(t, func(t *testing.T, env *testEnv) {
		env.signup(t)

		status, resp := env.do(t, http.MethodPost, "/api/contacts", map[string]any{"lastName": "Gibbons"})
		if status != http.StatusCreated {
			t.Fatalf("create contact status = %d", status)
		}
		contactID := resp["contact"].(map[string]any)["id"].(string)

		status, resp = env.do(t, http.MethodPost, "/api/tags", map[string]any{"name": "mentor"})
		if status != http.StatusCreated {
			t.Fatalf("create tag status = %d", status)
		}
		tagID := resp["tag"].(map[string]any)["id"].(string)

		status, _ = env.do(t, http.MethodPost, "/api/contacts/"+contactID+"/tags", map[string]any{"tagId": tagID})
		if status != http.StatusCreated {
			t.Fatalf("attach status = %d, want 201", status)
		}
		status, _ = env.do(t, http.MethodPost, "/api/contacts/"+contactID+"/tags", map[string]any{"tagId": tagID})
		if status != http.StatusConflict {
			t.Fatalf("double attach status = %d, want 409", status)
		}

		status, resp = env.do(t, http.MethodGet, "/api/contacts/"+contactID, nil)
		if status != http.StatusOK {
			t.Fatalf("get contact status = %d", status)
		}
		tags := resp["contact"].(map[string]any)["tags"].([]any)
		if len(tags) != 1 {
			t.Fatalf("tags = %v, want the attached tag", tags)
		}

		// Detach is idempotent: second call reports the association gone.
		status, _ = env.do(t, http.MethodDelete, "/api/contacts/"+contactID+"/tags?tagId="+tagID, nil)
		if status != http.StatusOK {
			t.Fatalf("detach status = %d, want 200", status)
		}
		status, resp = env.do(t, http.MethodDelete, "/api/contacts/"+contactID+"/tags?tagId="+tagID, nil)
		if status != http.StatusNotFound {
			t.Fatalf("second detach status = %d, want 404", status)
		}
		if resp["error"] != "Association not found" {
			t.Fatalf("error = %q", resp["error"])
		}

		// The reverse lookup through the tag is also user-scoped.
		status, resp = env.do(t, http.MethodGet, "/api/tags/"+tagID+"/contacts", nil)
		if status != http.StatusOK || resp["count"].(float64) != 0 {
			t.Fatalf("tag contacts after detach = %d %v", status, resp)
		}
	})
}

func TestContactEmbedsEmployer(t *testing.T) {
	eachBackend(t, func(t *testing.T, env *testEnv) {
		env.signup(t)
		companyID := env.createCompany(t, "Initech")

		status, resp := env.do(t, http.MethodPost, "/api/contacts", map[string]any{
			"firstName": "Peter",
			"lastName":  "Gibbons",
			"companyId": companyID,
		})
		if status != http.StatusCreated {
			t.Fatalf("create contact status = %d, body %v", status, resp)
		}
		contactID := resp["contact"].(map[string]any)["id"].(string)

		status, resp = env.do(t, http.MethodGet, "/api/contacts/"+contactID, nil)
		if status != http.StatusOK {
			t.Fatalf("get contact status = %d", status)
		}
		contact := resp["contact"].(map[string]any)
		company, ok := contact["company"].(map[string]any)
		if !ok {
			t.Fatalf("contact has no embedded company: %v", contact)
		}
		if company["id"] != companyID || company["name"] != "Initech" {
			t.Fatalf("embedded company = %v, want Initech %s", company, companyID)
		}
	})
}

func TestCompanyDeleteCascades(t *testing.T) {
	eachBackend(t, func(t *testing.T, env *testEnv) {
		env.signup(t)
		companyID := env.createCompany(t, "Initech")

		status, resp := env.do(t, http.MethodPost, "/api/contacts", map[string]any{
			"lastName":  "Gibbons",
			"companyId": companyID,
		})
		if status != http.StatusCreated {
			t.Fatalf("create contact status = %d", status)
		}
		contactID := resp["contact"].(map[string]any)["id"].(string)

		status, resp = env.do(t, http.MethodPost, "/api/activities", map[string]any{
			"type":      "MEETING",
			"date":      "2026-08-12",
			"subject":   "On-site chat",
			"companyId": companyID,
		})
		if status != http.StatusCreated {
			t.Fatalf("create activity status = %d, body %v", status, resp)
		}
		activityID := resp["activity"].(map[string]any)["id"].(string)

		status, resp = env.do(t, http.MethodPost, "/api/applications", map[string]any{
			"companyId": companyID,
			"position":  "Staff Engineer",
		})
		if status != http.StatusCreated {
			t.Fatalf("create application status = %d, body %v", status, resp)
		}
		applicationID := resp["application"].(map[string]any)["id"].(string)

		status, _ = env.do(t, http.MethodPost, "/api/links", map[string]any{
			"url":       "https://initech.test/jobs",
			"companyId": companyID,
		})
		if status != http.StatusCreated {
			t.Fatalf("create link status = %d", status)
		}

		status, _ = env.do(t, http.MethodDelete, "/api/companies/"+companyID, nil)
		if status != http.StatusOK {
			t.Fatalf("delete status = %d", status)
		}

		// Nothing reachable through the company remains.
		status, resp = env.do(t, http.MethodGet, "/api/companies/"+companyID+"/activities", nil)
		if status != http.StatusOK || resp["count"].(float64) != 0 {
			t.Fatalf("activities after delete = %d %v, want empty list", status, resp)
		}
		status, _ = env.do(t, http.MethodGet, "/api/activities/"+activityID, nil)
		if status != http.StatusNotFound {
			t.Fatalf("activity status = %d, want 404", status)
		}
		status, _ = env.do(t, http.MethodGet, "/api/applications/"+applicationID, nil)
		if status != http.StatusNotFound {
			t.Fatalf("application status = %d, want 404", status)
		}
		status, resp = env.do(t, http.MethodGet, "/api/links", nil)
		if status != http.StatusOK || resp["count"].(float64) != 0 {
			t.Fatalf("links after delete = %d %v, want empty list", status, resp)
		}

		// The contact survives, just without an employer.
		status, resp = env.do(t, http.MethodGet, "/api/contacts/"+contactID, nil)
		if status != http.StatusOK {
			t.Fatalf("contact status = %d, want 200", status)
		}
		if companyRef, ok := resp["contact"].(map[string]any)["companyId"]; ok && companyRef != nil && companyRef != "" {
			t.Errorf("contact companyId = %v, want cleared", companyRef)
		}
	})
}

func TestApplicationStatusValidation(t *testing.T) {
	eachBackend(t, func(t *testing.T, env *testEnv) {
		env.signup(t)
		companyID := env.createCompany(t, "Initech")

		status, resp := env.do(t, http.MethodPost, "/api/applications", map[string]any{
			"companyId": companyID,
			"position":  "Staff Engineer",
			"status":    "ghosted",
		})
		if status != http.StatusBadRequest {
			t.Fatalf("invalid status = %d, want 400", status)
		}

		status, resp = env.do(t, http.MethodPost, "/api/applications", map[string]any{
			"companyId":   companyID,
			"position":    "Staff Engineer",
			"appliedDate": "2026-08-01",
		})
		if status != http.StatusCreated {
			t.Fatalf("create status = %d, body %v", status, resp)
		}
		application := resp["application"].(map[string]any)
		if application["status"] != "applied" || application["priority"] != "medium" {
			t.Errorf("defaults = %v / %v", application["status"], application["priority"])
		}
		applicationID := application["id"].(string)

		status, resp = env.do(t, http.MethodPut, "/api/applications/"+applicationID, map[string]any{
			"status": "interview_scheduled",
		})
		if status != http.StatusOK {
			t.Fatalf("update status = %d, body %v", status, resp)
		}
		if resp["application"].(map[string]any)["status"] != "interview_scheduled" {
			t.Errorf("status = %v", resp["application"].(map[string]any)["status"])
		}
	})
}

func TestActivityCreateLinksContacts(t *testing.T) {
	eachBackend(t, func(t *testing.T, env *testEnv) {
		env.signup(t)

		status, resp := env.do(t, http.MethodPost, "/api/contacts", map[string]any{"lastName": "Gibbons"})
		if status != http.StatusCreated {
			t.Fatalf("create contact status = %d", status)
		}
		contactID := resp["contact"].(map[string]any)["id"].(string)

		status, resp = env.do(t, http.MethodPost, "/api/activities", map[string]any{
			"type":       "COFFEE_CHAT",
			"date":       "2026-08-20T09:30:00Z",
			"contactIds": []string{contactID},
		})
		if status != http.StatusCreated {
			t.Fatalf("create activity status = %d, body %v", status, resp)
		}
		activityID := resp["activity"].(map[string]any)["id"].(string)

		status, resp = env.do(t, http.MethodGet, "/api/activities/"+activityID, nil)
		if status != http.StatusOK {
			t.Fatalf("get activity status = %d", status)
		}
		contacts := resp["activity"].(map[string]any)["contacts"].([]any)
		if len(contacts) != 1 {
			t.Fatalf("contacts = %v, want the linked contact", contacts)
		}

		status, resp = env.do(t, http.MethodGet, "/api/contacts/"+contactID+"/activities", nil)
		if status != http.StatusOK || resp["count"].(float64) != 1 {
			t.Fatalf("contact activities = %d %v", status, resp)
		}

		// Invalid type rejected up front.
		status, _ = env.do(t, http.MethodPost, "/api/activities", map[string]any{
			"type": "CARRIER_PIGEON",
			"date": "2026-08-20",
		})
		if status != http.StatusBadRequest {
			t.Fatalf("invalid type status = %d, want 400", status)
		}
	})
}

func TestFileUploadLifecycle(t *testing.T) {
	eachBackend(t, func(t *testing.T, env *testEnv) {
		env.signup(t)

		upload := func(contentType string) (int, map[string]any) {
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			header := make(textproto.MIMEHeader)
			header.Set("Content-Disposition", `form-data; name="file"; filename="logo.png"`)
			header.Set("Content-Type", contentType)
			part, err := mw.CreatePart(header)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := part.Write([]byte("fake image bytes")); err != nil {
				t.Fatal(err)
			}
			if err := mw.WriteField("category", "logos"); err != nil {
				t.Fatal(err)
			}
			if err := mw.Close(); err != nil {
				t.Fatal(err)
			}

			req, err := http.NewRequest(http.MethodPost, env.ts.URL+"/api/files", &buf)
			if err != nil {
				t.Fatal(err)
			}
			req.Header.Set("Content-Type", mw.FormDataContentType())
			resp, err := env.client.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			var decoded map[string]any
			if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil && err != io.EOF {
				t.Fatal(err)
			}
			return resp.StatusCode, decoded
		}

		status, resp := upload("application/x-msdownload")
		if status != http.StatusBadRequest {
			t.Fatalf("disallowed type status = %d, want 400", status)
		}

		status, resp = upload("image/png")
		if status != http.StatusCreated {
			t.Fatalf("upload status = %d, body %v", status, resp)
		}
		file := resp["file"].(map[string]any)
		if file["originalName"] != "logo.png" || file["category"] != "logos" {
			t.Errorf("file metadata = %v", file)
		}
		fileID := file["id"].(string)
		if url, _ := resp["url"].(string); url == "" {
			t.Error("expected a url in the upload response")
		}

		status, _ = env.do(t, http.MethodDelete, "/api/files/"+fileID, nil)
		if status != http.StatusOK {
			t.Fatalf("delete status = %d", status)
		}
		status, _ = env.do(t, http.MethodGet, "/api/files/"+fileID, nil)
		if status != http.StatusNotFound {
			t.Fatalf("get after delete status = %d, want 404", status)
		}
	})
}

func TestAuthSessionFlow(t *testing.T) {
	eachBackend(t, func(t *testing.T, env *testEnv) {
		userID := env.signup(t)

		status, resp := env.do(t, http.MethodGet, "/api/auth/me", nil)
		if status != http.StatusOK {
			t.Fatalf("me status = %d", status)
		}
		user := resp["user"].(map[string]any)
		if user["id"] != userID || user["email"] != "peter@initech.test" {
			t.Errorf("me = %v", user)
		}
		if _, exposed := user["password"]; exposed {
			t.Error("password must never appear in a response")
		}

		// Wrong password rejected without leaking which part was wrong.
		status, resp = env.do(t, http.MethodPost, "/api/auth/logout", nil)
		if status != http.StatusOK {
			t.Fatalf("logout status = %d", status)
		}
		status, _ = env.do(t, http.MethodGet, "/api/auth/me", nil)
		if status != http.StatusUnauthorized {
			t.Fatalf("me after logout status = %d, want 401", status)
		}

		status, _ = env.do(t, http.MethodPost, "/api/auth/login", map[string]any{
			"email":    "peter@initech.test",
			"password": "wrong",
		})
		if status != http.StatusUnauthorized {
			t.Fatalf("bad login status = %d, want 401", status)
		}
	})
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, false)

	resp, err := env.client.Get(env.ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["status"] != "ok" {
		t.Errorf("status = %v, want ok", decoded["status"])
	}
}
