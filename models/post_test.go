package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageRequestNormalize(t *testing.T) {
	p := PageRequest{Page: -3, Size: 0}.Normalize()
	require.Equal(t, 0, p.Page)
	require.Equal(t, DefaultPageSize, p.Size)
	require.Equal(t, "created_at", p.SortField)
	require.True(t, p.SortDesc)

	p = PageRequest{Page: 2, Size: 500, SortField: "stats.views"}.Normalize()
	require.Equal(t, 2, p.Page)
	require.Equal(t, DefaultPageSize, p.Size)
	require.Equal(t, "stats.views", p.SortField)

	p = PageRequest{Page: 3, Size: 10}.Normalize()
	require.Equal(t, 30, p.Offset())
}

func TestUserHasRole(t *testing.T) {
	u := &User{Roles: "user, admin"}
	require.True(t, u.HasRole("admin"))
	require.True(t, u.HasRole("user"))
	require.False(t, u.HasRole("moderator"))
}
