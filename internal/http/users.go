package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
)

// UsersController exposes user administration.
type UsersController struct {
	accounts *catalog.AccountService
}

func NewUsersController(accounts *catalog.AccountService) *UsersController {
	return &UsersController{accounts: accounts}
}

type DeleteUserResponse struct {
	UserID  uint                    `json:"user_id"`
	Removed catalog.AccountDeletion `json:"removed"`
}

// DeleteUser handles DELETE /api/users/:id (admin only). The user's ratings
// are taken out of every affected book aggregate before the account goes.
func (uc *UsersController) DeleteUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if userID == auth.GetUserID(c) {
		respondBadRequest(c, "administrators cannot delete their own account")
		return
	}

	removed, err := uc.accounts.DeleteUser(c.Request.Context(), userID)
	if err != nil {
		respondDomainError(c, err, "delete user")
		return
	}

	requestLogger(c).Info("user deleted",
		zap.Uint("deleted_user_id", userID),
		zap.Int("ratings", removed.Ratings),
		zap.Int64("notes", removed.Notes),
		zap.Int64("reading_list_entries", removed.Entries))

	c.JSON(http.StatusOK, DeleteUserResponse{UserID: userID, Removed: *removed})
}
