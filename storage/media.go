package storage

import (
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"estately-server/logger"
)

// Cloudinary configuration via environment variables:
// CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET,
// CLOUDINARY_FOLDER (optional).

var ErrMediaNotConfigured = errors.New("cloudinary credentials are not configured")

var cloudinaryBaseURL = "https://api.cloudinary.com/v1_1"

type cloudinaryCredentials struct {
	cloudName string
	apiKey    string
	apiSecret string
	folder    string
}

func loadCredentials() (*cloudinaryCredentials, error) {
	c := &cloudinaryCredentials{
		cloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		apiKey:    os.Getenv("CLOUDINARY_API_KEY"),
		apiSecret: os.Getenv("CLOUDINARY_API_SECRET"),
		folder:    os.Getenv("CLOUDINARY_FOLDER"),
	}
	if c.cloudName == "" || c.apiKey == "" || c.apiSecret == "" {
		return nil, ErrMediaNotConfigured
	}
	return c, nil
}

// sign produces the SHA1 request signature Cloudinary expects for signed
// uploads and deletions.
func (c *cloudinaryCredentials) sign(publicID, timestamp string) string {
	payload := fmt.Sprintf("public_id=%s&timestamp=%s%s", publicID, timestamp, c.apiSecret)
	return fmt.Sprintf("%x", sha1.Sum([]byte(payload)))
}

func (c *cloudinaryCredentials) qualify(publicID string) string {
	if c.folder != "" {
		return c.folder + "/" + publicID
	}
	return publicID
}

// UploadBase64Image pushes a base64 data URL (or raw base64 payload) to
// Cloudinary under the given public ID and returns the hosted URL.
func UploadBase64Image(base64Src string, publicID string) (string, error) {
	return uploadBase64(base64Src, publicID, "image", "data:image/jpeg;base64,")
}

// UploadBase64Video is the video variant of UploadBase64Image.
func UploadBase64Video(base64Src string, publicID string, mime string) (string, error) {
	prefix := "data:video/mp4;base64,"
	if mime != "" {
		prefix = "data:" + mime + ";base64,"
	}
	return uploadBase64(base64Src, publicID, "video", prefix)
}

func uploadBase64(base64Src, publicID, resourceType, dataPrefix string) (string, error) {
	if base64Src == "" {
		return "", errors.New("empty media payload")
	}

	payload := base64Src
	if i := strings.Index(base64Src, ","); i != -1 {
		payload = base64Src[i+1:]
	}

	creds, err := loadCredentials()
	if err != nil {
		return "", err
	}

	endpoint := cloudinaryBaseURL + "/" + creds.cloudName + "/" + resourceType + "/upload"
	finalPublicID := creds.qualify(publicID)
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	form := url.Values{}
	form.Add("file", dataPrefix+payload)
	form.Add("api_key", creds.apiKey)
	form.Add("public_id", finalPublicID)
	form.Add("timestamp", timestamp)
	form.Add("signature", creds.sign(finalPublicID, timestamp))

	body, err := postForm(endpoint, form)
	if err != nil {
		return "", err
	}

	var cloudRes struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &cloudRes); err != nil {
		return "", fmt.Errorf("decode cloudinary response: %w", err)
	}
	if cloudRes.Error.Message != "" {
		return "", fmt.Errorf("cloudinary: %s", cloudRes.Error.Message)
	}

	hosted := cloudRes.SecureURL
	if hosted == "" {
		hosted = cloudRes.URL
	}
	if hosted == "" {
		return "", errors.New("cloudinary returned no URL")
	}

	logger.S().Debugw("media uploaded", "publicID", finalPublicID, "url", hosted)
	return hosted, nil
}

// DeleteMedia destroys a hosted asset by its stored public ID.
func DeleteMedia(publicID string, resourceType string) error {
	if publicID == "" {
		return errors.New("empty public ID")
	}
	if resourceType == "" {
		resourceType = "image"
	}

	creds, err := loadCredentials()
	if err != nil {
		return err
	}

	// Stored public IDs are unqualified; uploads registered the asset under
	// the folder-qualified ID, so the destroy must target the same one.
	finalPublicID := creds.qualify(publicID)

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	form := url.Values{}
	form.Add("public_id", finalPublicID)
	form.Add("api_key", creds.apiKey)
	form.Add("timestamp", timestamp)
	form.Add("signature", creds.sign(finalPublicID, timestamp))

	endpoint := cloudinaryBaseURL + "/" + creds.cloudName + "/" + resourceType + "/destroy"
	body, err := postForm(endpoint, form)
	if err != nil {
		return err
	}

	var deleteRes struct {
		Result string `json:"result"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &deleteRes); err != nil {
		return fmt.Errorf("decode cloudinary response: %w", err)
	}
	if deleteRes.Error.Message != "" {
		return fmt.Errorf("cloudinary: %s", deleteRes.Error.Message)
	}
	// "not found" is fine for our purposes: the asset is gone either way.
	if deleteRes.Result != "ok" && deleteRes.Result != "not found" {
		return fmt.Errorf("cloudinary destroy result: %s", deleteRes.Result)
	}

	logger.S().Debugw("media deleted", "publicID", finalPublicID)
	return nil
}

func postForm(endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cloudinary status %d: %s", res.StatusCode, string(body))
	}
	return body, nil
}
