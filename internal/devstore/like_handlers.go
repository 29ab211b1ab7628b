package devstore

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kava/internal/models"
)

// AddLike inserts a like for the caller (protected). The (post, user) pair
// is unique; liking twice is a conflict.
func (s *Server) AddLike(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(string)
	postID := c.Params("id")

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("post", postID))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	exists, err := s.likeRepo.Exists(ctx, postID, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if exists {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewValidationError("Already liked"))
	}

	like := &models.Like{PostID: postID, UserID: userID}
	if err := s.likeRepo.Add(ctx, like); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.publish(c, models.ChangeEvent{
		Table: models.TableLikes,
		Kind:  models.ChangeInsert,
		New:   &models.ChangeRow{ID: like.ID, PostID: postID},
	})

	return c.SendStatus(fiber.StatusCreated)
}

// RemoveLike deletes the caller's like by (post, user) match (protected).
// The emitted delete event carries only the like row id, mirroring the
// hosted store's behavior of omitting the parent reference on deletes.
func (s *Server) RemoveLike(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(string)
	postID := c.Params("id")

	like, err := s.likeRepo.GetByMatch(ctx, postID, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if like == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}

	if err := s.likeRepo.RemoveByMatch(ctx, postID, userID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.publish(c, models.ChangeEvent{
		Table: models.TableLikes,
		Kind:  models.ChangeDelete,
		Old:   &models.ChangeRow{ID: like.ID},
	})

	return c.SendStatus(fiber.StatusNoContent)
}

// GetLikeCount returns a post's like count (public).
func (s *Server) GetLikeCount(c *fiber.Ctx) error {
	count, err := s.likeRepo.CountByPost(c.UserContext(), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// HasLike reports whether the caller likes a post (protected).
func (s *Server) HasLike(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	liked, err := s.likeRepo.Exists(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}

// ListMyLikes returns the ids of posts the caller likes (protected).
func (s *Server) ListMyLikes(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	ids, err := s.likeRepo.ListPostIDsByUser(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return c.JSON(fiber.Map{"post_ids": ids})
}
