package queries

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/eskrenkovic/slotbot/internal/modules/core"
	"github.com/eskrenkovic/slotbot/internal/modules/roster"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
)

type ListRostersQuery struct {
	readOnlyQuery
	ChatID int64
}

func (q ListRostersQuery) Chat() int64 {
	return q.ChatID
}

func (q ListRostersQuery) Validate() error {
	if q.ChatID == 0 {
		return fmt.Errorf("invalid ChatID - '%d'", q.ChatID)
	}

	return nil
}

func HandleListRosters(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.ParseInt(chi.URLParam(r, "chatID"), 10, 64)
	if err != nil {
		core.WriteBadRequest(w, r, fmt.Errorf("invalid format for path param 'chatID'"))
		return
	}

	response, err := mediator.Send[ListRostersQuery, []domain.Roster](
		r.Context(),
		ListRostersQuery{ChatID: chatID},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type ListRostersQueryHandler struct {
	store roster.Store
}

func NewListRostersQueryHandler(store roster.Store) *ListRostersQueryHandler {
	return &ListRostersQueryHandler{store}
}

// Handle returns the live rosters of the chat, earliest first.
func (h *ListRostersQueryHandler) Handle(
	ctx context.Context,
	request ListRostersQuery,
) ([]domain.Roster, error) {
	rosters, err := h.store.ListByChat(ctx, request.ChatID, false)
	if err != nil {
		return nil, mapError(err)
	}

	return rosters, nil
}
