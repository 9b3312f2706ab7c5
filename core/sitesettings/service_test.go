package sitesettings_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kistconnect/portal/core"
	"github.com/kistconnect/portal/core/sitesettings"
	"github.com/kistconnect/portal/core/user"
	inmemdb "github.com/kistconnect/portal/storage/database/inmem"
	"github.com/kistconnect/portal/tests"
)

func TestService(t *testing.T) {
	ctx := context.Background()
	svc := sitesettings.NewService(inmemdb.NewSiteSettingsRepository(inmemdb.Open()), testutil.NewValidator())
	editor := user.User{ID: "u1", Role: user.RoleTeacher}

	s, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)

	_, err = svc.Update(ctx, sitesettings.UpdateSettings{HeroTitle: " "}, editor)
	assert.Error(t, err)

	first := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	testutil.FreezeTime(t, first)
	saved, err := svc.Update(ctx, sitesettings.UpdateSettings{HeroTitle: " Karibu ", HeroDescription: "Learn"}, editor)
	require.NoError(t, err)
	assert.Equal(t, sitesettings.SiteSettings{
		HeroTitle: "Karibu", HeroDescription: "Learn", UpdatedBy: "u1", UpdatedAt: core.UnixMilli(first),
	}, saved)

	// a second edit overwrites the single settings record
	testutil.FreezeTime(t, first.Add(time.Hour))
	_, err = svc.Update(ctx, sitesettings.UpdateSettings{HeroTitle: "Welcome", HeroDescription: "Study"}, user.User{ID: "u2"})
	require.NoError(t, err)

	s, err = svc.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, sitesettings.SiteSettings{
		HeroTitle: "Welcome", HeroDescription: "Study", UpdatedBy: "u2", UpdatedAt: core.UnixMilli(first.Add(time.Hour)),
	}, *s)
}
