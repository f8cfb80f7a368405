package queries

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/eskrenkovic/slotbot/internal/modules/core"
	"github.com/eskrenkovic/slotbot/internal/modules/player"
	"github.com/eskrenkovic/slotbot/internal/modules/roster"
	"github.com/eskrenkovic/slotbot/internal/modules/roster/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
)

// RenderStatusQuery renders every live roster of the chat for PlayerID.
// A zero PlayerID renders in the default timezone.
type RenderStatusQuery struct {
	readOnlyQuery
	ChatID   int64
	PlayerID int64
}

func (q RenderStatusQuery) Chat() int64 {
	return q.ChatID
}

func (q RenderStatusQuery) Validate() error {
	if q.ChatID == 0 {
		return fmt.Errorf("invalid ChatID - '%d'", q.ChatID)
	}

	return nil
}

type RenderStatusResponse struct {
	Text    string          `json:"text"`
	Rosters []domain.Roster `json:"rosters"`
}

func HandleRenderStatus(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.ParseInt(chi.URLParam(r, "chatID"), 10, 64)
	if err != nil {
		core.WriteBadRequest(w, r, fmt.Errorf("invalid format for path param 'chatID'"))
		return
	}

	var playerID int64
	if raw := r.URL.Query().Get("playerID"); raw != "" {
		if playerID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			core.WriteBadRequest(w, r, fmt.Errorf("invalid format for query param 'playerID'"))
			return
		}
	}

	response, err := mediator.Send[RenderStatusQuery, RenderStatusResponse](
		r.Context(),
		RenderStatusQuery{ChatID: chatID, PlayerID: playerID},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type RenderStatusQueryHandler struct {
	store    roster.Store
	players  player.Store
	settings roster.Settings
}

func NewRenderStatusQueryHandler(store roster.Store, players player.Store, settings roster.Settings) *RenderStatusQueryHandler {
	return &RenderStatusQueryHandler{store, players, settings}
}

func (h *RenderStatusQueryHandler) Handle(
	ctx context.Context,
	request RenderStatusQuery,
) (RenderStatusResponse, error) {
	viewer := h.settings.Renderer.DefaultLocation
	if request.PlayerID != 0 {
		p, err := h.players.Get(ctx, request.PlayerID)
		if err != nil {
			return RenderStatusResponse{}, mapError(err)
		}
		viewer = h.settings.Location(p.Timezone)
	}

	rosters, err := h.store.ListByChat(ctx, request.ChatID, false)
	if err != nil {
		return RenderStatusResponse{}, mapError(err)
	}

	return RenderStatusResponse{
		Text:    h.settings.Renderer.StatusAll(rosters, viewer, h.settings.Time()),
		Rosters: rosters,
	}, nil
}
