// Image HTTP handlers.
//
// This file exposes the image endpoints:
//   - POST /image           (enhance, submit, poll; returns the image locator)
//   - POST /image/enhance   (enhance only; no image provider call)
//
// POST /image holds the connection for up to the poll budget
// (interval × attempts, one minute by default).
package handlers

import (
	"github.com/gin-gonic/gin"
)

//
// DTOs
//

// ImageRequest is the JSON payload for both image endpoints.
type ImageRequest struct {
	// ImageDescription is the one-line image idea. It must be non-empty.
	ImageDescription string `json:"imageDescription" example:"5th grade students solving math puzzles"`
}

// ImageResponse is a generated image and the prompt that produced it.
// ImageURL is either an https URL or a data:image/png;base64 locator.
type ImageResponse struct {
	EnhancedPrompt string `json:"enhancedPrompt" example:"Photorealistic classroom, rule of thirds..."`
	ImageURL       string `json:"imageUrl" example:"https://cdn.example.com/img/abc.png"`
	OriginalIdea   string `json:"originalIdea" example:"5th grade students solving math puzzles"`
}

// EnhanceResponse is the enhanced prompt without an image.
type EnhanceResponse struct {
	EnhancedPrompt string `json:"enhancedPrompt" example:"Photorealistic classroom, rule of thirds..."`
	OriginalIdea   string `json:"originalIdea" example:"5th grade students solving math puzzles"`
}

// PostImage godoc
// @ID          postImage
// @Summary     Generate a campaign image
// @Description Enhances the idea into an image prompt, submits it to the image
// @Description provider and polls the task until it completes, fails or times out.
// @Description Supports idempotency via the Idempotency-Key header.
// @Tags        Generation
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"
// @Param       body             body    handlers.ImageRequest  true  "Image idea"
//
// @Success     200  {object}  handlers.ImageResponse  "Generated image"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid token"
// @Failure     409  {object}  handlers.ErrorResponse  "Task already being polled"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse  "Configuration, provider, failed or timed-out generation"
// @Router      /image [post]
func (h *Handlers) PostImage(c *gin.Context) {
	if h.serveReplay(c) {
		return
	}

	var req ImageRequest
	if !bind(c, &req) {
		return
	}

	res, err := h.imgSvc.Generate(c.Request.Context(), req.ImageDescription)
	if err != nil {
		failFrom(c, err, imageText)
		return
	}

	h.succeed(c, ImageResponse{
		EnhancedPrompt: res.EnhancedPrompt,
		ImageURL:       res.ImageURL,
		OriginalIdea:   res.OriginalIdea,
	})
}

// PostImageEnhance godoc
// @ID          postImageEnhance
// @Summary     Enhance an image idea
// @Description Rewrites the idea into a detailed image-generation prompt without generating an image.
// @Tags        Generation
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"
// @Param       body             body    handlers.ImageRequest  true  "Image idea"
//
// @Success     200  {object}  handlers.EnhanceResponse  "Enhanced prompt"
// @Failure     400  {object}  handlers.ErrorResponse    "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse    "Missing or invalid token"
// @Failure     429  {object}  handlers.ErrorResponse    "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse    "Configuration or provider error"
// @Router      /image/enhance [post]
func (h *Handlers) PostImageEnhance(c *gin.Context) {
	if h.serveReplay(c) {
		return
	}

	var req ImageRequest
	if !bind(c, &req) {
		return
	}

	res, err := h.imgSvc.Enhance(c.Request.Context(), req.ImageDescription)
	if err != nil {
		failFrom(c, err, enhanceText)
		return
	}

	h.succeed(c, EnhanceResponse{EnhancedPrompt: res.EnhancedPrompt, OriginalIdea: res.OriginalIdea})
}
