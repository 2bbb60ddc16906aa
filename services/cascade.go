package services

import (
	"context"

	"github.com/theBenForce/CareerCraft-sub000/models"
	"github.com/theBenForce/CareerCraft-sub000/repository"
)

// purge deletes every record in a collection matching the filter. The
// fetch-then-delete loop is what both backends support; it also keeps
// cascades identical between them.
func purge[T any](ctx context.Context, coll repository.Collection[T], where repository.Filter, id func(*T) string) error {
	rows, err := coll.FindMany(ctx, where, repository.Options{})
	if err != nil {
		return err
	}
	for i := range rows {
		if _, err := coll.Delete(ctx, id(&rows[i])); err != nil {
			return err
		}
	}
	return nil
}

// cascades owns referential cleanup. Neither backend enforces ON DELETE
// rules for us, so every delete that other records can point at walks its
// dependents explicitly.
type cascades struct {
	store *repository.Store
}

func (c cascades) DeleteActivity(ctx context.Context, activityID string) error {
	where := repository.Filter{"activityId": activityID}
	if err := purge(ctx, c.store.ActivityTags, where, func(j *models.ActivityTag) string { return j.ID }); err != nil {
		return err
	}
	if err := purge(ctx, c.store.ActivityContacts, where, func(j *models.ActivityContact) string { return j.ID }); err != nil {
		return err
	}
	if err := purge(ctx, c.store.ActivityFiles, where, func(j *models.ActivityFile) string { return j.ID }); err != nil {
		return err
	}
	_, err := c.store.Activities.Delete(ctx, activityID)
	return err
}

func (c cascades) DeleteJobApplication(ctx context.Context, applicationID string) error {
	where := repository.Filter{"jobApplicationId": applicationID}
	if err := purge(ctx, c.store.JobApplicationFiles, where, func(j *models.JobApplicationFile) string { return j.ID }); err != nil {
		return err
	}
	if err := purge(ctx, c.store.Links, where, func(l *models.Link) string { return l.ID }); err != nil {
		return err
	}

	// Activities referencing the application survive, unlinked.
	activities, err := c.store.Activities.FindMany(ctx, where, repository.Options{})
	if err != nil {
		return err
	}
	for i := range activities {
		if _, err := c.store.Activities.Update(ctx, activities[i].ID, map[string]any{"jobApplicationId": nil}); err != nil {
			return err
		}
	}

	_, err = c.store.JobApplications.Delete(ctx, applicationID)
	return err
}

func (c cascades) DeleteCompany(ctx context.Context, companyID string) error {
	where := repository.Filter{"companyId": companyID}
	if err := purge(ctx, c.store.CompanyTags, where, func(j *models.CompanyTag) string { return j.ID }); err != nil {
		return err
	}
	if err := purge(ctx, c.store.CompanyFiles, where, func(j *models.CompanyFile) string { return j.ID }); err != nil {
		return err
	}
	if err := purge(ctx, c.store.Links, where, func(l *models.Link) string { return l.ID }); err != nil {
		return err
	}

	activities, err := c.store.Activities.FindMany(ctx, where, repository.Options{})
	if err != nil {
		return err
	}
	for i := range activities {
		if err := c.DeleteActivity(ctx, activities[i].ID); err != nil {
			return err
		}
	}

	applications, err := c.store.JobApplications.FindMany(ctx, where, repository.Options{})
	if err != nil {
		return err
	}
	for i := range applications {
		if err := c.DeleteJobApplication(ctx, applications[i].ID); err != nil {
			return err
		}
	}

	// Contacts keep their history, they just lose the employer reference.
	contacts, err := c.store.Contacts.FindMany(ctx, where, repository.Options{})
	if err != nil {
		return err
	}
	for i := range contacts {
		if _, err := c.store.Contacts.Update(ctx, contacts[i].ID, map[string]any{"companyId": nil}); err != nil {
			return err
		}
	}

	_, err = c.store.Companies.Delete(ctx, companyID)
	return err
}

func (c cascades) DeleteContact(ctx context.Context, contactID string) error {
	where := repository.Filter{"contactId": contactID}
	if err := purge(ctx, c.store.ContactTags, where, func(j *models.ContactTag) string { return j.ID }); err != nil {
		return err
	}
	if err := purge(ctx, c.store.ContactFiles, where, func(j *models.ContactFile) string { return j.ID }); err != nil {
		return err
	}
	if err := purge(ctx, c.store.ActivityContacts, where, func(j *models.ActivityContact) string { return j.ID }); err != nil {
		return err
	}
	if err := purge(ctx, c.store.Links, where, func(l *models.Link) string { return l.ID }); err != nil {
		return err
	}
	_, err := c.store.Contacts.Delete(ctx, contactID)
	return err
}

func (c cascades) DeleteTag(ctx context.Context, tagID string) error {
	where := repository.Filter{"tagId": tagID}
	if err := purge(ctx, c.store.CompanyTags, where, func(j *models.CompanyTag) string { return j.ID }); err != nil {
		return err
	}
	if err := purge(ctx, c.store.ContactTags, where, func(j *models.ContactTag) string { return j.ID }); err != nil {
		return err
	}
	if err := purge(ctx, c.store.ActivityTags, where, func(j *models.ActivityTag) string { return j.ID }); err != nil {
		return err
	}
	_, err := c.store.Tags.Delete(ctx, tagID)
	return err
}

func (c cascades) DeleteFile(ctx context.Context, fileID string) error {
	where := repository.Filter{"fileId": fileID}
	if err := purge(ctx, c.store.CompanyFiles, where, func(j *models.CompanyFile) string { return j.ID }); err != nil {
		return err
	}
	if err := purge(ctx, c.store.ContactFiles, where, func(j *models.ContactFile) string { return j.ID }); err != nil {
		return err
	}
	if err := purge(ctx, c.store.ActivityFiles, where, func(j *models.ActivityFile) string { return j.ID }); err != nil {
		return err
	}
	if err := purge(ctx, c.store.JobApplicationFiles, where, func(j *models.JobApplicationFile) string { return j.ID }); err != nil {
		return err
	}
	_, err := c.store.Files.Delete(ctx, fileID)
	return err
}
