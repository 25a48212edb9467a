package handlers

import (
	"errors"
	"net/http"

	"github.com/chachabrian/carrental-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// UploadCarImage stores the multipart "image" field and returns its URL,
// which clients then send as imageUrl when creating a listing.
func UploadCarImage(storage *services.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, authed := caller(c); !authed {
			return
		}

		file, err := c.FormFile("image")
		if err != nil {
			fail(c, http.StatusBadRequest, "Validation failed", "Image file is required")
			return
		}

		imageURL, err := storage.UploadImage(file, "cars")
		switch {
		case errors.Is(err, services.ErrNotAnImage):
			fail(c, http.StatusBadRequest, "Validation failed", "Uploaded file must be an image")
			return
		case errors.Is(err, services.ErrImageTooLarge):
			fail(c, http.StatusBadRequest, "Validation failed", "Image must be 5MB or smaller")
			return
		case err != nil:
			respondError(c, err, "Failed to upload image")
			return
		}

		respond(c, http.StatusCreated, gin.H{"imageUrl": imageURL}, "Image uploaded successfully")
	}
}
