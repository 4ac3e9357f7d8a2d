package rpc

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"lockdropd/crypto"
	"lockdropd/native/lockdrop"
)

func decodeParams(req *RPCRequest, out interface{}) *RPCError {
	if len(req.Params) != 1 {
		return &RPCError{Code: codeInvalidParams, Message: "expected a single params object"}
	}
	if err := json.Unmarshal(req.Params[0], out); err != nil {
		return &RPCError{Code: codeInvalidParams, Message: fmt.Sprintf("invalid params: %v", err)}
	}
	return nil
}

func parseAddress(field, value string) (crypto.Address, *RPCError) {
	addr, err := crypto.DecodeAddress(strings.TrimSpace(value))
	if err != nil {
		return crypto.Address{}, &RPCError{Code: codeInvalidParams, Message: fmt.Sprintf("%s: %v", field, err)}
	}
	return addr, nil
}

func parseAmount(field, value string) (*big.Int, *RPCError) {
	amount, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
	if !ok {
		return nil, &RPCError{Code: codeInvalidParams, Message: fmt.Sprintf("%s: malformed amount %q", field, value)}
	}
	return amount, nil
}

func executionError(err error) *RPCError {
	return &RPCError{Code: codeServerError, Message: err.Error()}
}

type depositParams struct {
	From     string `json:"from"`
	Duration uint64 `json:"duration"`
	Denom    string `json:"denom"`
	Amount   string `json:"amount"`
}

func (s *Server) handleDeposit(req *RPCRequest) (interface{}, *RPCError) {
	var params depositParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	from, rpcErr := parseAddress("from", params.From)
	if rpcErr != nil {
		return nil, rpcErr
	}
	amount, rpcErr := parseAmount("amount", params.Amount)
	if rpcErr != nil {
		return nil, rpcErr
	}
	funds := []lockdrop.Coin{{Denom: strings.TrimSpace(params.Denom), Amount: amount}}
	events, err := s.processor.Deposit(s.now(), from, params.Duration, funds)
	if err != nil {
		return nil, executionError(err)
	}
	return events, nil
}

type withdrawParams struct {
	From     string `json:"from"`
	Duration uint64 `json:"duration"`
	Amount   string `json:"amount"`
}

func (s *Server) handleWithdraw(req *RPCRequest) (interface{}, *RPCError) {
	var params withdrawParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	from, rpcErr := parseAddress("from", params.From)
	if rpcErr != nil {
		return nil, rpcErr
	}
	amount, rpcErr := parseAmount("amount", params.Amount)
	if rpcErr != nil {
		return nil, rpcErr
	}
	events, err := s.processor.Withdraw(s.now(), from, params.Duration, amount)
	if err != nil {
		return nil, executionError(err)
	}
	return events, nil
}

type callerParams struct {
	From string `json:"from"`
}

func (s *Server) handleInvest(req *RPCRequest) (interface{}, *RPCError) {
	var params callerParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	from, rpcErr := parseAddress("from", params.From)
	if rpcErr != nil {
		return nil, rpcErr
	}
	events, err := s.processor.Invest(s.now(), from)
	if err != nil {
		return nil, executionError(err)
	}
	return events, nil
}

func (s *Server) handleEnableClaims(req *RPCRequest) (interface{}, *RPCError) {
	var params callerParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	from, rpcErr := parseAddress("from", params.From)
	if rpcErr != nil {
		return nil, rpcErr
	}
	events, err := s.processor.EnableClaims(s.now(), from)
	if err != nil {
		return nil, executionError(err)
	}
	return events, nil
}

type delegateParams struct {
	From   string `json:"from"`
	Amount string `json:"amount"`
}

func (s *Server) handleDelegate(req *RPCRequest) (interface{}, *RPCError) {
	var params delegateParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	from, rpcErr := parseAddress("from", params.From)
	if rpcErr != nil {
		return nil, rpcErr
	}
	amount, rpcErr := parseAmount("amount", params.Amount)
	if rpcErr != nil {
		return nil, rpcErr
	}
	events, err := s.processor.Delegate(s.now(), from, amount)
	if err != nil {
		return nil, executionError(err)
	}
	return events, nil
}

type claimParams struct {
	From           string `json:"from"`
	UnlockDuration uint64 `json:"unlockDuration"`
	Forceful       bool   `json:"forceful"`
}

func (s *Server) handleClaimRewards(req *RPCRequest) (interface{}, *RPCError) {
	var params claimParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	from, rpcErr := parseAddress("from", params.From)
	if rpcErr != nil {
		return nil, rpcErr
	}
	events, err := s.processor.ClaimRewardsAndUnlock(s.now(), from, params.UnlockDuration, params.Forceful)
	if err != nil {
		return nil, executionError(err)
	}
	return events, nil
}

type updateConfigParams struct {
	From              string  `json:"from"`
	Owner             *string `json:"owner,omitempty"`
	Venue             *string `json:"venue,omitempty"`
	ShareToken        *string `json:"shareToken,omitempty"`
	RewardToken       *string `json:"rewardToken,omitempty"`
	IncentiveToken    *string `json:"incentiveToken,omitempty"`
	DelegationProgram *string `json:"delegationProgram,omitempty"`
	InitTimestamp     *uint64 `json:"initTimestamp,omitempty"`
	DepositWindow     *uint64 `json:"depositWindow,omitempty"`
	WithdrawalWindow  *uint64 `json:"withdrawalWindow,omitempty"`
}

func (s *Server) handleUpdateConfig(req *RPCRequest) (interface{}, *RPCError) {
	var params updateConfigParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	from, rpcErr := parseAddress("from", params.From)
	if rpcErr != nil {
		return nil, rpcErr
	}

	update := lockdrop.ConfigUpdate{
		InitTimestamp:    params.InitTimestamp,
		DepositWindow:    params.DepositWindow,
		WithdrawalWindow: params.WithdrawalWindow,
	}
	addressUpdates := []struct {
		field string
		value *string
		dst   **crypto.Address
	}{
		{"owner", params.Owner, &update.Owner},
		{"venue", params.Venue, &update.Venue},
		{"shareToken", params.ShareToken, &update.ShareToken},
		{"rewardToken", params.RewardToken, &update.RewardToken},
		{"incentiveToken", params.IncentiveToken, &update.IncentiveToken},
		{"delegationProgram", params.DelegationProgram, &update.DelegationProgram},
	}
	for _, au := range addressUpdates {
		if au.value == nil {
			continue
		}
		addr, rpcErr := parseAddress(au.field, *au.value)
		if rpcErr != nil {
			return nil, rpcErr
		}
		*au.dst = &addr
	}

	events, err := s.processor.UpdateConfig(s.now(), from, update)
	if err != nil {
		return nil, executionError(err)
	}
	return events, nil
}

func (s *Server) handleGetConfig(req *RPCRequest) (interface{}, *RPCError) {
	var result *lockdrop.ConfigResponse
	err := s.processor.View(s.now(), func(e *lockdrop.Engine) error {
		var viewErr error
		result, viewErr = e.QueryConfig()
		return viewErr
	})
	if err != nil {
		return nil, executionError(err)
	}
	return result, nil
}

func (s *Server) handleGetState(req *RPCRequest) (interface{}, *RPCError) {
	var result *lockdrop.StateResponse
	err := s.processor.View(s.now(), func(e *lockdrop.Engine) error {
		var viewErr error
		result, viewErr = e.QueryState()
		return viewErr
	})
	if err != nil {
		return nil, executionError(err)
	}
	return result, nil
}

type userInfoParams struct {
	Address string `json:"address"`
}

func (s *Server) handleGetUserInfo(req *RPCRequest) (interface{}, *RPCError) {
	var params userInfoParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	addr, rpcErr := parseAddress("address", params.Address)
	if rpcErr != nil {
		return nil, rpcErr
	}
	var result *lockdrop.UserInfoResponse
	err := s.processor.View(s.now(), func(e *lockdrop.Engine) error {
		var viewErr error
		result, viewErr = e.QueryUserInfo(addr)
		return viewErr
	})
	if err != nil {
		return nil, executionError(err)
	}
	return result, nil
}

type lockupParams struct {
	Address  string `json:"address"`
	Duration uint64 `json:"duration"`
}

func (s *Server) handleGetLockup(req *RPCRequest) (interface{}, *RPCError) {
	var params lockupParams
	if rpcErr := decodeParams(req, &params); rpcErr != nil {
		return nil, rpcErr
	}
	addr, rpcErr := parseAddress("address", params.Address)
	if rpcErr != nil {
		return nil, rpcErr
	}
	var result *lockdrop.LockupResponse
	err := s.processor.View(s.now(), func(e *lockdrop.Engine) error {
		var viewErr error
		result, viewErr = e.QueryLockup(addr, params.Duration)
		return viewErr
	})
	if err != nil {
		return nil, executionError(err)
	}
	return result, nil
}
