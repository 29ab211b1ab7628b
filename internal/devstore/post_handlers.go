package devstore

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kava/internal/models"
)

// GetPosts returns the feed ordered by recency, counts included (public).
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postRepo.List(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(posts)
}

// CreatePost creates a post (protected). The id and creation time are
// assigned here, never by the client.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(string)
	username := c.Locals("username").(string)

	var req struct {
		Description string `json:"description"`
		Rating      int    `json:"rating"`
		ImageRef    string `json:"image_ref"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if len(strings.TrimSpace(req.Description)) > models.MaxDescriptionLen {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Description too long"))
	}
	if req.Rating != 0 && (req.Rating < 1 || req.Rating > 5) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Rating must be between 1 and 5"))
	}

	post := &models.Post{
		AuthorID:       userID,
		AuthorUsername: username,
		ImageRef:       req.ImageRef,
		Description:    strings.TrimSpace(req.Description),
		Rating:         req.Rating,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.publish(c, models.ChangeEvent{
		Table: models.TablePosts,
		Kind:  models.ChangeInsert,
		New:   &models.ChangeRow{ID: post.ID},
	})

	return c.Status(fiber.StatusCreated).JSON(post)
}

// DeletePost deletes a post (protected, author-only).
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(string)
	postID := c.Params("id")

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("post", postID))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if post.AuthorID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only delete your own posts"))
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.publish(c, models.ChangeEvent{
		Table: models.TablePosts,
		Kind:  models.ChangeDelete,
		Old:   &models.ChangeRow{ID: postID},
	})

	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteImage handles best-effort cleanup of a stored image object. The
// dev store keeps no binary objects, so this always succeeds.
func (s *Server) DeleteImage(c *fiber.Ctx) error {
	log.Printf("image cleanup requested: %s", c.Params("ref"))
	return c.SendStatus(fiber.StatusNoContent)
}

// GetLeaderboard ranks authors by total likes received (public).
func (s *Server) GetLeaderboard(c *fiber.Ctx) error {
	entries, err := s.userRepo.Leaderboard(c.UserContext(), 20)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(entries)
}

// publish sends a change event, logging rather than failing the request on
// error; notification delivery is best-effort by contract.
func (s *Server) publish(c *fiber.Ctx, ev models.ChangeEvent) {
	if err := s.notifier.Publish(c.UserContext(), ev); err != nil {
		log.Printf("change publish failed: %v", err)
	}
}
