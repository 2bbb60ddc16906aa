package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/theBenForce/CareerCraft-sub000/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDocTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := MigrateDocuments(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewDocStore(NewDocumentStore(db))
}

func TestDocStoreCreateAssignsULID(t *testing.T) {
	store := newDocTestStore(t)
	ctx := context.Background()

	company := &models.Company{UserID: "user-1", Name: "Initech"}
	if err := store.Companies.Create(ctx, company); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(company.ID) != 26 {
		t.Fatalf("id = %q, want a 26-char ulid", company.ID)
	}
	if company.CreatedAt.IsZero() {
		t.Error("expected createdAt to be set")
	}
}

func TestDocStoreOwnershipFilter(t *testing.T) {
	store := newDocTestStore(t)
	ctx := context.Background()

	company := &models.Company{UserID: "user-1", Name: "Initech"}
	if err := store.Companies.Create(ctx, company); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	found, err := store.Companies.FindUnique(ctx, Filter{"id": company.ID, "userId": "user-1"}, Options{})
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if found == nil {
		t.Fatal("expected to find the company")
	}

	// The id short-circuit must still honour the rest of the filter.
	other, err := store.Companies.FindUnique(ctx, Filter{"id": company.ID, "userId": "user-2"}, Options{})
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if other != nil {
		t.Fatal("expected no record for a different user")
	}
}

func TestDocStorePartialUpdate(t *testing.T) {
	store := newDocTestStore(t)
	ctx := context.Background()

	company := &models.Company{UserID: "user-1", Name: "Initech", Industry: "Software"}
	if err := store.Companies.Create(ctx, company); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := store.Companies.Update(ctx, company.ID, map[string]any{"location": "Remote"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Location != "Remote" {
		t.Errorf("location = %q, want Remote", updated.Location)
	}
	if updated.Industry != "Software" {
		t.Errorf("industry = %q, want untouched value Software", updated.Industry)
	}

	if _, err := store.Companies.Update(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV", map[string]any{"name": "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDocStoreDeleteThenMiss(t *testing.T) {
	store := newDocTestStore(t)
	ctx := context.Background()

	tag := &models.Tag{UserID: "user-1", Name: "go"}
	if err := store.Tags.Create(ctx, tag); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	deleted, err := store.Tags.Delete(ctx, tag.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if deleted.Name != "go" {
		t.Errorf("deleted.Name = %q, want go", deleted.Name)
	}

	if _, err := store.Tags.Delete(ctx, tag.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}

	found, err := store.Tags.FindUnique(ctx, Filter{"id": tag.ID}, Options{})
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if found != nil {
		t.Fatal("expected the tag to be gone")
	}
}

func TestDocStoreOrderSkipTake(t *testing.T) {
	store := newDocTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"citrus", "apple", "banana"} {
		if err := store.Tags.Create(ctx, &models.Tag{UserID: "user-1", Name: name}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	tags, err := store.Tags.FindMany(ctx, Filter{"userId": "user-1"},
		Options{OrderBy: "name asc", Skip: 1, Take: 1})
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "banana" {
		t.Fatalf("tags = %+v, want just banana", tags)
	}
}

func TestDocStoreOrdersTypedValues(t *testing.T) {
	store := newDocTestStore(t)
	ctx := context.Background()

	// Mixed UTC offsets: the middle timestamp is latest in absolute time
	// even though it sorts first lexically.
	dates := []string{
		"2026-08-01T10:00:00Z",
		"2026-08-01T09:00:00-05:00",
		"2026-08-01T11:00:00+02:00",
	}
	durations := []int{9, 100, 10}
	for i, raw := range dates {
		date, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			t.Fatal(err)
		}
		d := durations[i]
		activity := &models.Activity{
			UserID: "user-1", Type: models.ActivityEmail,
			Subject: raw, Date: date, Duration: &d,
		}
		if err := store.Activities.Create(ctx, activity); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	activities, err := store.Activities.FindMany(ctx, Filter{"userId": "user-1"},
		Options{OrderBy: "date desc"})
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if len(activities) != 3 {
		t.Fatalf("got %d activities, want 3", len(activities))
	}
	if activities[0].Subject != "2026-08-01T09:00:00-05:00" {
		t.Errorf("latest = %q, timestamps must order chronologically, not lexically", activities[0].Subject)
	}

	activities, err = store.Activities.FindMany(ctx, Filter{"userId": "user-1"},
		Options{OrderBy: "duration asc"})
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	var got []int
	for _, a := range activities {
		got = append(got, *a.Duration)
	}
	if got[0] != 9 || got[1] != 10 || got[2] != 100 {
		t.Errorf("durations = %v, numbers must order numerically", got)
	}
}

func TestDocStoreResolvesBelongsTo(t *testing.T) {
	store := newDocTestStore(t)
	ctx := context.Background()

	company := &models.Company{UserID: "user-1", Name: "Initech"}
	if err := store.Companies.Create(ctx, company); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	contact := &models.Contact{UserID: "user-1", LastName: "Gibbons", CompanyID: &company.ID}
	if err := store.Contacts.Create(ctx, contact); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	found, err := store.Contacts.FindUnique(ctx, Filter{"id": contact.ID}, Options{Include: []string{"Company"}})
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if found.Company == nil || found.Company.Name != "Initech" {
		t.Fatalf("company = %+v, want Initech resolved", found.Company)
	}
}

func TestDocStoreResolvesManyToMany(t *testing.T) {
	store := newDocTestStore(t)
	ctx := context.Background()

	company := &models.Company{UserID: "user-1", Name: "Initech"}
	if err := store.Companies.Create(ctx, company); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	tag := &models.Tag{UserID: "user-1", Name: "target"}
	if err := store.Tags.Create(ctx, tag); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := store.CompanyTags.Create(ctx, &models.CompanyTag{CompanyID: company.ID, TagID: tag.ID}); err != nil {
		t.Fatalf("create join failed: %v", err)
	}

	found, err := store.Companies.FindUnique(ctx, Filter{"id": company.ID}, Options{Include: []string{"Tags"}})
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if len(found.Tags) != 1 || found.Tags[0].Name != "target" {
		t.Fatalf("tags = %+v, want the attached tag", found.Tags)
	}
}

func TestDocStoreResolvesHasMany(t *testing.T) {
	store := newDocTestStore(t)
	ctx := context.Background()

	company := &models.Company{UserID: "user-1", Name: "Initech"}
	if err := store.Companies.Create(ctx, company); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	for _, lastName := range []string{"Gibbons", "Waddams"} {
		contact := &models.Contact{UserID: "user-1", LastName: lastName, CompanyID: &company.ID}
		if err := store.Contacts.Create(ctx, contact); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	found, err := store.Companies.FindUnique(ctx, Filter{"id": company.ID}, Options{Include: []string{"Contacts"}})
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if len(found.Contacts) != 2 {
		t.Fatalf("contacts = %d, want 2", len(found.Contacts))
	}
}

// Password and refresh token hashes are excluded from JSON encoding, so the
// document round trip has to carry them separately.
func TestDocStoreKeepsCredentialFields(t *testing.T) {
	store := newDocTestStore(t)
	ctx := context.Background()

	user := &models.User{Email: "peter@initech.test", Password: "hashed-password"}
	if err := store.Users.Create(ctx, user); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	found, err := store.Users.FindUnique(ctx, Filter{"email": "peter@initech.test"}, Options{})
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if found == nil || found.Password != "hashed-password" {
		t.Fatalf("expected password hash to survive the round trip, got %+v", found)
	}

	token := &models.RefreshToken{UserID: user.ID, Token: "token-hash"}
	if err := store.RefreshTokens.Create(ctx, token); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	foundToken, err := store.RefreshTokens.FindUnique(ctx, Filter{"token": "token-hash"}, Options{})
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if foundToken == nil || foundToken.UserID != user.ID {
		t.Fatalf("expected token lookup by hash to work, got %+v", foundToken)
	}
}

func TestDocStoreNullFilterValue(t *testing.T) {
	store := newDocTestStore(t)
	ctx := context.Background()

	company := &models.Company{UserID: "user-1", Name: "Initech"}
	if err := store.Companies.Create(ctx, company); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	employed := &models.Contact{UserID: "user-1", LastName: "Gibbons", CompanyID: &company.ID}
	if err := store.Contacts.Create(ctx, employed); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	free := &models.Contact{UserID: "user-1", LastName: "Bolton"}
	if err := store.Contacts.Create(ctx, free); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	unattached, err := store.Contacts.FindMany(ctx, Filter{"userId": "user-1", "companyId": nil}, Options{})
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if len(unattached) != 1 || unattached[0].LastName != "Bolton" {
		t.Fatalf("unattached = %+v, want just Bolton", unattached)
	}
}
