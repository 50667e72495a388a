package routes

import (
	"estately-server/storage"
	"estately-server/utils"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
)

type uploadInput struct {
	Data string `json:"data" validate:"required"` // base64 data URL or raw base64
	Mime string `json:"mime"`                     // for video
}

// UploadImage handles standalone base64 image upload (avatars, verification
// documents). Listing photos go through the property routes so the tier cap
// applies.
func UploadImage(ctx iris.Context) {
	var in uploadInput
	if err := ctx.ReadJSON(&in); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	url, err := storage.UploadBase64Image(in.Data, "upload/"+uuid.NewString())
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Upload Error", "image upload failed", ctx)
		return
	}
	ctx.JSON(iris.Map{"url": url})
}
