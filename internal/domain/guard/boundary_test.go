package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/target/storyweb/internal/domain/auth"
)

func TestBoundary_WaitsThenRedirectsOnce(t *testing.T) {
	reads := 0
	b := NewBoundary(MustPolicy(AudienceProtectedAdmin), func() domainauth.Viewer {
		reads++
		return domainauth.Viewer{}
	})

	assert.Equal(t, OutcomeWait, b.Decision().Outcome)

	d, changed := b.Observe(loading)
	assert.True(t, changed)
	assert.Equal(t, OutcomeWait, d.Outcome)
	assert.Equal(t, 0, reads, "role flags are not read while loading")

	d, changed = b.Observe(resolvedOut)
	assert.True(t, changed)
	assert.Equal(t, redirect(PathLogin), d)
	assert.Equal(t, 1, reads)

	d, changed = b.Observe(resolvedOut)
	assert.False(t, changed, "same dependency pair must not trigger another pass")
	assert.Equal(t, redirect(PathLogin), d)
	assert.Equal(t, 1, reads)
}

func TestBoundary_ReevaluatesOnAuthenticatedChange(t *testing.T) {
	// Every audience tracks authenticated, the admin guard included.
	for _, a := range []Audience{AudiencePrivate, AudiencePublic, AudienceProtectedAdmin, AudienceProtectedUser} {
		viewer := domainauth.Viewer{}
		b := NewBoundary(MustPolicy(a), func() domainauth.Viewer { return viewer })

		first, _ := b.Observe(resolvedOut)

		viewer = adminViewer
		second, changed := b.Observe(resolvedIn)
		assert.True(t, changed, "audience %s", a)
		assert.NotEqual(t, first, second, "audience %s", a)
	}
}

func TestBoundary_RoleChangeAloneDoesNotReevaluate(t *testing.T) {
	viewer := userViewer
	b := NewBoundary(MustPolicy(AudiencePrivate), func() domainauth.Viewer { return viewer })

	d, _ := b.Observe(resolvedIn)
	assert.Equal(t, render(), d)

	viewer = adminViewer
	d, changed := b.Observe(resolvedIn)
	assert.False(t, changed)
	assert.Equal(t, render(), d, "role flags are read per pass, not subscribed to")
}

func TestBoundary_NilViewer(t *testing.T) {
	b := NewBoundary(MustPolicy(AudiencePublic), nil)
	d, _ := b.Observe(resolvedOut)
	assert.Equal(t, render(), d)
}
