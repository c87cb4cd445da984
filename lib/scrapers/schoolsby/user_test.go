package schoolsby

import (
	"context"
	"net/http"
	"testing"

	"schoolsby-client/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func TestUserInfo(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t)
	defer cleanup()

	mux := http.NewServeMux()
	mux.HandleFunc("/user/101", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/pupil/101", http.StatusFound)
	})
	mux.Handle("/pupil/101", fixturePage(t, "user_pupil.html"))
	mux.HandleFunc("/user/55", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/director/55", http.StatusFound)
	})
	mux.Handle("/director/55", fixturePage(t, "user_pupil.html"))
	client := newTestClient(t, mux)

	user, err := client.UserInfo(context.Background(), 101, testCreds)
	require.NoError(t, err)
	require.Equal(t, User{
		ID:   101,
		Role: RolePupil,
		Name: Name{First: "Анна", Middle: "Сергеевна", Last: "Акулич"},
	}, user)

	// director profiles resolve to the administration role
	user, err = client.UserInfo(context.Background(), 55, testCreds)
	require.NoError(t, err)
	require.Equal(t, RoleAdministration, user.Role)
}

func TestUserInfoUnknownRoleSegment(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t)
	defer cleanup()

	mux := http.NewServeMux()
	mux.Handle("/user/7", fixturePage(t, "user_pupil.html"))
	client := newTestClient(t, mux)

	_, err := client.UserInfo(context.Background(), 7, testCreds)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}
