package devstore

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kava/internal/models"
)

// CreateComment creates a comment on a post (protected). Id and timestamp
// are server-assigned; the response body is not relied on by clients, which
// refetch instead.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(string)
	username := c.Locals("username").(string)
	postID := c.Params("id")

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("post", postID))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Content is required"))
	}
	if len(content) > models.MaxCommentLen {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Content too long"))
	}

	comment := &models.Comment{
		PostID:         postID,
		AuthorID:       userID,
		AuthorUsername: username,
		Content:        content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.publish(c, models.ChangeEvent{
		Table: models.TableComments,
		Kind:  models.ChangeInsert,
		New:   &models.ChangeRow{ID: comment.ID, PostID: postID},
	})

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComments returns all comments for a post, oldest first (public).
func (s *Server) GetComments(c *fiber.Ctx) error {
	comments, err := s.commentRepo.ListByPost(c.UserContext(), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(comments)
}

// GetCommentCount returns a post's comment count (public).
func (s *Server) GetCommentCount(c *fiber.Ctx) error {
	count, err := s.commentRepo.CountByPost(c.UserContext(), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// DeleteComment deletes a comment (protected, author-only). The emitted
// delete event carries only the comment id, mirroring the hosted store's
// behavior of omitting the parent reference on deletes.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(string)
	commentID := c.Params("id")

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("comment", commentID))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if comment.AuthorID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only delete your own comments"))
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.publish(c, models.ChangeEvent{
		Table: models.TableComments,
		Kind:  models.ChangeDelete,
		Old:   &models.ChangeRow{ID: commentID},
	})

	return c.SendStatus(fiber.StatusNoContent)
}
