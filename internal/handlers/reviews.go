package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medica-server/internal/middleware"
	"medica-server/internal/service"
	"medica-server/internal/utils"
)

// ReviewHandler accepts client reviews of completed appointments.
type ReviewHandler struct {
	Reviews *service.ReviewService
	Log     *zap.Logger
}

func NewReviewHandler(reviews *service.ReviewService, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{Reviews: reviews, Log: log}
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment" binding:"max=2000"`
}

// CreateReview stores a review for the appointment in the path.
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req CreateReviewRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	review, err := h.Reviews.CreateReview(c.Request.Context(), middleware.Principal(c).UserID, c.Param("id"), req.Rating, req.Comment)
	if err != nil {
		utils.RespondError(c, h.Log, err)
		return
	}
	utils.Created(c, "Thank you for your review!", review)
}
