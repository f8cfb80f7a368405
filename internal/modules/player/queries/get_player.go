package queries

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/eskrenkovic/slotbot/internal/modules/core"
	"github.com/eskrenkovic/slotbot/internal/modules/player"
	"github.com/eskrenkovic/slotbot/internal/modules/player/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
)

type GetPlayerByUserIDQuery struct {
	UserID int64
}

func (q GetPlayerByUserIDQuery) Validate() error {
	if q.UserID == 0 {
		return fmt.Errorf("invalid UserID - '%d'", q.UserID)
	}

	return nil
}

func HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		core.WriteBadRequest(w, r, fmt.Errorf("invalid format for path param 'userID'"))
		return
	}

	response, err := mediator.Send[GetPlayerByUserIDQuery, domain.Player](
		r.Context(),
		GetPlayerByUserIDQuery{UserID: userID},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type GetPlayerByUserIDQueryHandler struct {
	store player.Store
}

func NewGetPlayerByUserIDQueryHandler(store player.Store) *GetPlayerByUserIDQueryHandler {
	return &GetPlayerByUserIDQueryHandler{store}
}

func (h *GetPlayerByUserIDQueryHandler) Handle(
	ctx context.Context,
	request GetPlayerByUserIDQuery,
) (domain.Player, error) {
	p, err := h.store.GetByUserID(ctx, request.UserID)
	if err != nil {
		return domain.Player{}, core.MapError(err, core.ErrorStatus{Err: domain.ErrPlayerNotFound, StatusCode: 404})
	}

	return p, nil
}
