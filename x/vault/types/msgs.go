package types

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Message types
const (
	TypeMsgDeposit           = "deposit"
	TypeMsgWithdraw          = "withdraw"
	TypeMsgSetStrategy       = "set_strategy"
	TypeMsgSetPaused         = "set_paused"
	TypeMsgTransferOwnership = "transfer_ownership"
)

// MsgDeposit defines the Deposit message
type MsgDeposit struct {
	Depositor string `json:"depositor"`
	Amount    string `json:"amount"`
}

// Route implements sdk.Msg
func (msg MsgDeposit) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgDeposit) Type() string { return TypeMsgDeposit }

// ValidateBasic implements sdk.Msg
func (msg MsgDeposit) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Depositor); err != nil {
		return err
	}
	if msg.Amount == "" {
		return ErrZeroAmount
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgDeposit) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Depositor)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgDeposit) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgDeposit) Reset() { *msg = MsgDeposit{} }

// String implements proto.Message
func (msg MsgDeposit) String() string {
	return fmt.Sprintf("MsgDeposit{Depositor: %s, Amount: %s}", msg.Depositor, msg.Amount)
}

// MsgDepositResponse defines the Deposit response
type MsgDepositResponse struct {
	DepositID    string `json:"deposit_id"`
	SharesMinted string `json:"shares_minted"`
}

// MsgWithdraw defines the Withdraw message
type MsgWithdraw struct {
	Withdrawer string `json:"withdrawer"`
	Shares     string `json:"shares"`
}

// Route implements sdk.Msg
func (msg MsgWithdraw) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgWithdraw) Type() string { return TypeMsgWithdraw }

// ValidateBasic implements sdk.Msg
func (msg MsgWithdraw) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Withdrawer); err != nil {
		return err
	}
	if msg.Shares == "" {
		return ErrZeroShares
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgWithdraw) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Withdrawer)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgWithdraw) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgWithdraw) Reset() { *msg = MsgWithdraw{} }

// String implements proto.Message
func (msg MsgWithdraw) String() string {
	return fmt.Sprintf("MsgWithdraw{Withdrawer: %s, Shares: %s}", msg.Withdrawer, msg.Shares)
}

// MsgWithdrawResponse defines the Withdraw response
type MsgWithdrawResponse struct {
	WithdrawalID string `json:"withdrawal_id"`
	AssetsOut    string `json:"assets_out"`
	SharesBurned string `json:"shares_burned"`
}

// MsgSetStrategy defines the SetStrategy message
type MsgSetStrategy struct {
	Owner    string `json:"owner"`
	Strategy string `json:"strategy"`
}

// Route implements sdk.Msg
func (msg MsgSetStrategy) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgSetStrategy) Type() string { return TypeMsgSetStrategy }

// ValidateBasic implements sdk.Msg
func (msg MsgSetStrategy) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Owner); err != nil {
		return err
	}
	if msg.Strategy == "" {
		return ErrEmptyAddress
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgSetStrategy) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Owner)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgSetStrategy) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgSetStrategy) Reset() { *msg = MsgSetStrategy{} }

// String implements proto.Message
func (msg MsgSetStrategy) String() string {
	return fmt.Sprintf("MsgSetStrategy{Owner: %s, Strategy: %s}", msg.Owner, msg.Strategy)
}

// MsgSetStrategyResponse defines the SetStrategy response
type MsgSetStrategyResponse struct {
	Strategy string `json:"strategy"`
}

// MsgSetPaused defines the SetPaused message
type MsgSetPaused struct {
	Owner  string `json:"owner"`
	Paused bool   `json:"paused"`
}

// Route implements sdk.Msg
func (msg MsgSetPaused) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgSetPaused) Type() string { return TypeMsgSetPaused }

// ValidateBasic implements sdk.Msg
func (msg MsgSetPaused) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Owner); err != nil {
		return err
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgSetPaused) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Owner)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgSetPaused) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgSetPaused) Reset() { *msg = MsgSetPaused{} }

// String implements proto.Message
func (msg MsgSetPaused) String() string {
	return fmt.Sprintf("MsgSetPaused{Owner: %s, Paused: %t}", msg.Owner, msg.Paused)
}

// MsgSetPausedResponse defines the SetPaused response
type MsgSetPausedResponse struct {
	Paused bool `json:"paused"`
}

// MsgTransferOwnership defines the TransferOwnership message
type MsgTransferOwnership struct {
	Owner    string `json:"owner"`
	NewOwner string `json:"new_owner"`
}

// Route implements sdk.Msg
func (msg MsgTransferOwnership) Route() string { return ModuleName }

// Type implements sdk.Msg
func (msg MsgTransferOwnership) Type() string { return TypeMsgTransferOwnership }

// ValidateBasic implements sdk.Msg
func (msg MsgTransferOwnership) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Owner); err != nil {
		return err
	}
	if _, err := sdk.AccAddressFromBech32(msg.NewOwner); err != nil {
		return err
	}
	return nil
}

// GetSigners implements sdk.Msg
func (msg MsgTransferOwnership) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Owner)
	return []sdk.AccAddress{addr}
}

// ProtoMessage implements proto.Message
func (*MsgTransferOwnership) ProtoMessage() {}

// Reset implements proto.Message
func (msg *MsgTransferOwnership) Reset() { *msg = MsgTransferOwnership{} }

// String implements proto.Message
func (msg MsgTransferOwnership) String() string {
	return fmt.Sprintf("MsgTransferOwnership{Owner: %s, NewOwner: %s}", msg.Owner, msg.NewOwner)
}

// MsgTransferOwnershipResponse defines the TransferOwnership response
type MsgTransferOwnershipResponse struct {
	NewOwner string `json:"new_owner"`
}
