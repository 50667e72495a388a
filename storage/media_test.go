package storage

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualifyPrependsFolder(t *testing.T) {
	creds := &cloudinaryCredentials{folder: "estately"}
	assert.Equal(t, "estately/property/7/abc", creds.qualify("property/7/abc"))

	bare := &cloudinaryCredentials{}
	assert.Equal(t, "property/7/abc", bare.qualify("property/7/abc"))
}

func TestDeleteMediaTargetsFolderQualifiedID(t *testing.T) {
	var gotPublicID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotPublicID = r.FormValue("public_id")
		w.Write([]byte(`{"result":"ok"}`))
	}))
	defer srv.Close()

	orig := cloudinaryBaseURL
	cloudinaryBaseURL = srv.URL
	defer func() { cloudinaryBaseURL = orig }()

	t.Setenv("CLOUDINARY_CLOUD_NAME", "demo")
	t.Setenv("CLOUDINARY_API_KEY", "key")
	t.Setenv("CLOUDINARY_API_SECRET", "secret")
	t.Setenv("CLOUDINARY_FOLDER", "estately")

	err := DeleteMedia("property/7/abc", "image")
	require.NoError(t, err)

	// Uploads register the asset under the folder-qualified ID, so the
	// destroy must hit the same one or the asset leaks.
	assert.Equal(t, "estately/property/7/abc", gotPublicID)
}

func TestDeleteMediaRequiresCredentials(t *testing.T) {
	t.Setenv("CLOUDINARY_CLOUD_NAME", "")
	t.Setenv("CLOUDINARY_API_KEY", "")
	t.Setenv("CLOUDINARY_API_SECRET", "")

	err := DeleteMedia("property/7/abc", "image")
	assert.ErrorIs(t, err, ErrMediaNotConfigured)
}
