package users_test

import (
	"testing"

	"github.com/jrsteele09/sanctyr/users"
	fakeuserrepo "github.com/jrsteele09/sanctyr/users/repofake"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	u, err := users.New(" Ember@Sanctyr.dev ", "ember", "Passw0rd!")
	require.NoError(t, err)
	require.Equal(t, "ember@sanctyr.dev", u.Email)
	require.Equal(t, "ember", u.Profile.DisplayName)
	require.Equal(t, users.DefaultTheme, u.Profile.SelectedTheme)
	require.Equal(t, users.DefaultRank, u.Standing.Rank)
	require.True(t, u.CheckPassword("Passw0rd!"))
	require.False(t, u.CheckPassword("wrong"))

	_, err = users.New("not-an-email", "ember", "x")
	require.Error(t, err)

	_, err = users.New("a@b.c", "e", "x")
	require.Error(t, err)

	_, err = users.New("a@b.c", "ember the bold", "x")
	require.Error(t, err)
}

func TestValidatePasswordStrength(t *testing.T) {
	require.Error(t, users.ValidatePasswordStrength("short"))
	require.Error(t, users.ValidatePasswordStrength("alllowercase1"))
	require.Error(t, users.ValidatePasswordStrength("ALLUPPERCASE1"))
	require.Error(t, users.ValidatePasswordStrength("NoNumbersHere"))
	require.NoError(t, users.ValidatePasswordStrength("Passw0rdOK"))
}

func TestRoles(t *testing.T) {
	u := &users.User{
		Profile: users.Profile{
			AvailableEliteRoles:   []string{"Archon"},
			AvailableSpecialRoles: []string{"Lorekeeper"},
			SelectedEliteRole:     "Archon",
		},
		Standing: users.Standing{NationRoles: []string{"Archon", "Veteran"}},
	}

	require.Equal(t, []string{"Archon", "Veteran"}, u.Roles())
	require.True(t, u.CanSelectEliteRole("Archon"))
	require.True(t, u.CanSelectEliteRole(""))
	require.False(t, u.CanSelectEliteRole("Lorekeeper"))
	require.True(t, u.CanSelectSpecialRole("Lorekeeper"))
	require.False(t, u.CanSelectSpecialRole("Emperor"))
}

func TestFakeUserRepo(t *testing.T) {
	repo := fakeuserrepo.NewFakeUserRepo()

	u, err := users.New("ember@sanctyr.dev", "Ember", "Passw0rd!")
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(u))
	require.NotEmpty(t, u.ID)

	byName, err := repo.GetByUsername("ember")
	require.NoError(t, err)
	require.Equal(t, u.ID, byName.ID)

	byEmail, err := repo.GetByEmail("ember@sanctyr.dev")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	u.Username = "EmberTheBold"
	require.NoError(t, repo.Upsert(u))
	_, err = repo.GetByUsername("ember")
	require.Error(t, err, "old username is released on rename")

	require.NoError(t, repo.SetBlocked(u.Email, true))
	got, err := repo.GetByID(u.ID)
	require.NoError(t, err)
	require.True(t, got.Blocked)

	list, err := repo.List(0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, repo.Delete(u.Email))
	_, err = repo.GetByID(u.ID)
	require.Error(t, err)
	require.Error(t, repo.Delete(u.Email))
}

func TestCanUseTheme(t *testing.T) {
	u, err := users.New("ember@sanctyr.dev", "ember", "Passw0rd!")
	require.NoError(t, err)

	require.True(t, u.CanUseTheme(users.ThemeOrnate))
	require.True(t, u.CanUseTheme(users.ThemeMinimalist))
	require.False(t, u.CanUseTheme(users.ThemeAstral))
	require.False(t, u.CanUseTheme(users.ThemeCelestial))
	require.False(t, u.CanUseTheme(users.ThemeVoidSovereign))
	require.False(t, u.CanUseTheme("neon"))

	u.Profile.AvailableEliteRoles = []string{"Flameborn"}
	u.Profile.AvailableSpecialRoles = []string{"Archivist"}
	require.True(t, u.CanUseTheme(users.ThemeAstral))
	require.True(t, u.CanUseTheme(users.ThemeCelestial))
	require.False(t, u.CanUseTheme(users.ThemeVoidSovereign))

	u.Profile.AvailableEliteRoles = append(u.Profile.AvailableEliteRoles, users.RoleEternalQueen)
	require.True(t, u.CanUseTheme(users.ThemeVoidSovereign))
}
