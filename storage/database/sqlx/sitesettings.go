package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/kistconnect/portal/core/sitesettings"
)

// the settings live in the single row with this key
const siteSettingsKey = 1

type siteSettingsRow struct {
	HeroTitle       string `db:"hero_title"`
	HeroDescription string `db:"hero_description"`
	UpdatedBy       string `db:"updated_by"`
	UpdatedAt       int64  `db:"updated_at"`
}

type siteSettingsRepository struct {
	exec sqlx.ExtContext
}

var _ sitesettings.Repository = (*siteSettingsRepository)(nil) // interface compliance check

func NewSiteSettingsRepository(exec sqlx.ExtContext) *siteSettingsRepository {
	return &siteSettingsRepository{exec: exec}
}

func (repo siteSettingsRepository) GetSettings(ctx context.Context) (sitesettings.SiteSettings, error) {
	var row siteSettingsRow
	q := repo.exec.Rebind(`
		SELECT hero_title, hero_description, updated_by, updated_at FROM site_settings WHERE id = ?`)
	if err := sqlx.GetContext(ctx, repo.exec, &row, q, siteSettingsKey); err != nil {
		if err == sql.ErrNoRows {
			return sitesettings.SiteSettings{}, sitesettings.ErrNotFound
		}
		return sitesettings.SiteSettings{}, wrapErr(err, "selecting site settings")
	}
	return sitesettings.SiteSettings(row), nil
}

func (repo siteSettingsRepository) SaveSettings(ctx context.Context, s sitesettings.SiteSettings) (sitesettings.SiteSettings, error) {
	q := repo.exec.Rebind(`
		INSERT INTO site_settings (id, hero_title, hero_description, updated_by, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			hero_title = excluded.hero_title,
			hero_description = excluded.hero_description,
			updated_by = excluded.updated_by,
			updated_at = excluded.updated_at`)
	if _, err := repo.exec.ExecContext(
		ctx, q, siteSettingsKey, s.HeroTitle, s.HeroDescription, s.UpdatedBy, s.UpdatedAt,
	); err != nil {
		return sitesettings.SiteSettings{}, wrapErr(err, "upserting site settings")
	}
	return s, nil
}
