package api

import (
	"net/http"

	reqdto "rental-engine/internal/handler/dto/request"
	resdto "rental-engine/internal/handler/dto/response"
	"rental-engine/internal/handler/httperr"
	"rental-engine/internal/usecase/commands"
	"rental-engine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

const defaultWalletTxLimit = 20

type WalletHandler struct {
	cmds    commands.WalletCommands
	queries queries.WalletQueries
}

func NewWalletHandler(cmds commands.WalletCommands, q queries.WalletQueries) *WalletHandler {
	return &WalletHandler{cmds: cmds, queries: q}
}

type walletQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}

// @Summary Get wallet
// @Description Balance and newest ledger entries of the caller's wallet
// @Tags wallet
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Number of transactions (default 20, max 200)"
// @Success 200 {object} resdto.WalletResponse
// @Failure 400 {object} httperr.Response
// @Router /wallet [get]
func (h *WalletHandler) Get(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	var q walletQuery
	if !bindQuery(c, &q) {
		return
	}
	if q.Limit == 0 {
		q.Limit = defaultWalletTxLimit
	}

	wv, err := h.queries.Get(c.Request.Context(), a.ID, q.Limit)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	res, err := resdto.FromWalletView(wv)
	render(c, http.StatusOK, res, err)
}

// @Summary Top up wallet
// @Tags wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.TopUpRequest true "Amount to credit"
// @Success 201 {object} resdto.WalletEntryResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /wallet/top-up [post]
func (h *WalletHandler) TopUp(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	var req reqdto.TopUpRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.cmds.TopUp(c.Request.Context(), a.ID, req.Amount, req.Description)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	res, err := resdto.FromWalletEntry(result)
	render(c, http.StatusCreated, res, err)
}

// @Summary Withdraw from wallet
// @Tags wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.WithdrawRequest true "Amount to debit"
// @Success 201 {object} resdto.WalletEntryResponse
// @Failure 400 {object} httperr.Response
// @Failure 402 {object} httperr.Response
// @Router /wallet/withdraw [post]
func (h *WalletHandler) Withdraw(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	var req reqdto.WithdrawRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.cmds.Withdraw(c.Request.Context(), a.ID, req.Amount, req.Description)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	res, err := resdto.FromWalletEntry(result)
	render(c, http.StatusCreated, res, err)
}
