package inmemdb

import (
	"context"

	"github.com/kistconnect/portal/core/sitesettings"
)

type siteSettingsRepository struct {
	db *DB
}

var _ sitesettings.Repository = (*siteSettingsRepository)(nil) // interface compliance check

func NewSiteSettingsRepository(db *DB) *siteSettingsRepository {
	return &siteSettingsRepository{db: db}
}

func (repo *siteSettingsRepository) GetSettings(_ context.Context) (sitesettings.SiteSettings, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if repo.db.settings == nil {
		return sitesettings.SiteSettings{}, sitesettings.ErrNotFound
	}
	return *repo.db.settings, nil
}

func (repo *siteSettingsRepository) SaveSettings(_ context.Context, s sitesettings.SiteSettings) (sitesettings.SiteSettings, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.settings = &s
	return s, nil
}
