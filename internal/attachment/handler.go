package attachment

import (
	"github.com/vgridasov/WebRegLog/internal/response"
	"github.com/vgridasov/WebRegLog/internal/utils"
	"github.com/gofiber/fiber/v2"
)

const maxAttachmentSize = 20 * 1024 * 1024

// UploadAttachmentHandler stores a file and returns its URL. The URL is what
// gets saved as the value of a file-type record field.
func UploadAttachmentHandler(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "No file provided", nil)
	}

	if fileHeader.Size > maxAttachmentSize {
		return response.BadRequest(c, "File exceeds the 20MB limit", nil)
	}

	url, err := utils.UploadFile(fileHeader)
	if err != nil {
		return response.InternalError(c, "Failed to store file")
	}

	return response.Created(c, fiber.Map{
		"url":       url,
		"file_name": fileHeader.Filename,
		"size":      fileHeader.Size,
		"type":      fileHeader.Header.Get("Content-Type"),
	}, "File uploaded successfully")
}
