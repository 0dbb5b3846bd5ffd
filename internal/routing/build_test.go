package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildURL(t *testing.T) {
	d := DefaultDescriptor()

	url, err := d.BuildURL(KindTenant, "acme", "", "settings")
	require.NoError(t, err)
	assert.Equal(t, "/acme/settings", url)

	url, err = d.BuildURL(KindProject, "acme", "proj1", "settings/api-keys")
	require.NoError(t, err)
	assert.Equal(t, "/acme/proj1/settings/api-keys", url)

	url, err = d.HomeURL(KindProject, "acme", "proj1")
	require.NoError(t, err)
	assert.Equal(t, "/acme/proj1", url)
}

func TestBuildURL_Rejections(t *testing.T) {
	d := DefaultDescriptor()

	_, err := d.BuildURL(KindTenant, "", "", "settings")
	assert.Error(t, err)

	_, err = d.BuildURL(KindTenant, "acme", "proj1", "settings")
	assert.Error(t, err)

	_, err = d.BuildURL(KindProject, "acme", "", "logs")
	assert.Error(t, err)

	_, err = d.BuildURL(KindProject, "acme", "proj1", "teleporter")
	assert.Error(t, err)

	_, err = d.BuildURL(KindNone, "", "", "")
	assert.Error(t, err)
}

// Round-trip property: every page the descriptor accepts survives
// build-then-parse with the same slugs and page type.
func TestRoundTrip_AllConfiguredPages(t *testing.T) {
	d := DefaultDescriptor()

	for kind, routes := range d.Contexts {
		tenantSlug := "acme"
		projectSlug := ""
		if kind == KindProject {
			projectSlug = "proj1"
		}

		pageTypes := []string{""}
		pageTypes = append(pageTypes, routes.Pages...)
		for parent, children := range routes.Nested {
			for _, child := range children {
				pageTypes = append(pageTypes, parent+"/"+child)
			}
		}

		for _, pageType := range pageTypes {
			url, err := d.BuildURL(kind, tenantSlug, projectSlug, pageType)
			require.NoError(t, err, "kind=%s page=%q", kind, pageType)

			route := d.ParseRoute(url)
			assert.Equal(t, kind, route.Context, "url=%s", url)
			assert.Equal(t, tenantSlug, route.TenantSlug, "url=%s", url)
			assert.Equal(t, projectSlug, route.ProjectSlug, "url=%s", url)
			assert.Equal(t, pageType, route.PageType, "url=%s", url)
			assert.True(t, route.Known, "url=%s", url)
		}
	}
}
