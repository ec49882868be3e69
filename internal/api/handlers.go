package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mmynk/splitpay/internal/allocator"
	"github.com/mmynk/splitpay/internal/auth"
	"github.com/mmynk/splitpay/internal/ledger"
	"github.com/mmynk/splitpay/internal/middleware"
	"github.com/mmynk/splitpay/internal/models"
	"github.com/mmynk/splitpay/internal/money"
)

type registerRequest struct {
	Email         string `json:"email"`
	DisplayName   string `json:"display_name"`
	WalletAddress string `json:"wallet_address"`
	Password      string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	DisplayName   string `json:"display_name"`
	WalletAddress string `json:"wallet_address,omitempty"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, errors.New("email required"))
		return
	}

	user, err := a.authenticator.Register(r.Context(), req.Email, req.DisplayName, req.WalletAddress, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, err)
		case errors.Is(err, auth.ErrEmailExists):
			writeError(w, http.StatusConflict, err)
		default:
			writeError(w, http.StatusInternalServerError, errors.New("registration failed"))
		}
		return
	}

	token, err := a.jwt.Generate(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("failed to issue token"))
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: toUserResponse(user)})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := a.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials)
		return
	}

	token, err := a.jwt.Generate(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("failed to issue token"))
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: toUserResponse(user)})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := a.users.GetUserByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil || user == nil {
		writeError(w, http.StatusNotFound, errors.New("user not found"))
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		WalletAddress: u.WalletAddress,
	}
}

type participantPayload struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
	// Share is the manual-split amount in minor units; ShareDisplay is the
	// decimal-string alternative (e.g. "15.00"). At most one is used.
	Share        *int64 `json:"share,omitempty"`
	ShareDisplay string `json:"share_display,omitempty"`
}

type createBillRequest struct {
	Title        string               `json:"title"`
	Currency     string               `json:"currency"`
	Total        *int64               `json:"total,omitempty"`
	TotalDisplay string               `json:"total_display,omitempty"`
	SplitPolicy  string               `json:"split_policy"`
	Participants []participantPayload `json:"participants"`
}

// amountFrom resolves an amount from either the minor-unit integer form or
// the display-decimal form. Scaling happens here at the boundary; the
// ledger only ever sees minor units.
func amountFrom(minor *int64, display, currency string) (money.Money, error) {
	switch {
	case minor != nil:
		return money.New(*minor, currency)
	case display != "":
		return money.Parse(display, currency)
	default:
		return money.Money{}, fmt.Errorf("%w: amount required", models.ErrInvalidAmount)
	}
}

func (a *API) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Currency == "" {
		writeError(w, http.StatusBadRequest, errors.New("currency required"))
		return
	}

	total, err := amountFrom(req.Total, req.TotalDisplay, req.Currency)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	policy := allocator.Policy(req.SplitPolicy)
	inputs := make([]ledger.ParticipantInput, len(req.Participants))
	for i, p := range req.Participants {
		inputs[i] = ledger.ParticipantInput{ID: p.ID, Name: p.Name, Contact: p.Contact}
		if policy == allocator.PolicyManual {
			share, err := amountFrom(p.Share, p.ShareDisplay, req.Currency)
			if err != nil {
				writeLedgerError(w, err)
				return
			}
			inputs[i].Share = &share
		}
	}

	organizer := middleware.GetUserID(r.Context())
	billID, err := a.ledger.CreateBill(r.Context(), organizer, req.Title, total, inputs, policy)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"bill_id": billID})
}

func (a *API) handleListBills(w http.ResponseWriter, r *http.Request) {
	ids, err := a.ledger.BillsForUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"bill_ids": ids})
}

func (a *API) handleGetBill(w http.ResponseWriter, r *http.Request) {
	detail, err := a.ledger.GetBill(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (a *API) handleBillStatus(w http.ResponseWriter, r *http.Request) {
	status, err := a.ledger.BillStatus(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

type paymentRequest struct {
	ParticipantID string `json:"participant_id"`
	Amount        *int64 `json:"amount,omitempty"`
	AmountDisplay string `json:"amount_display,omitempty"`
}

type paymentResponse struct {
	Status    models.Status `json:"status"`
	Completed bool          `json:"completed"`
}

func (a *API) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	billID := mux.Vars(r)["id"]
	var req paymentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	detail, err := a.ledger.GetBill(r.Context(), billID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	amount, err := amountFrom(req.Amount, req.AmountDisplay, detail.Currency)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	payer := middleware.GetUserID(r.Context())
	if wallet := middleware.GetWallet(r.Context()); wallet != "" {
		payer = wallet
	}

	status, completed, err := a.ledger.RecordPayment(r.Context(), billID, req.ParticipantID, payer, amount)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentResponse{Status: status, Completed: completed})
}

type withdrawResponse struct {
	Collected money.Money `json:"collected"`
}

func (a *API) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	requester := middleware.GetUserID(r.Context())

	// Pay out to the organizer's wallet when one is on file.
	destination := ""
	if user, err := a.users.GetUserByID(r.Context(), requester); err == nil && user != nil {
		destination = user.Payout()
	}

	collected, err := a.ledger.Withdraw(r.Context(), mux.Vars(r)["id"], requester, destination)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, withdrawResponse{Collected: collected})
}
