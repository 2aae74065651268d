package amino

// Msg is a chain message identified by its protobuf type URL.
type Msg interface {
	TypeURL() string
}

const (
	TypeURLUnjail         = "/cosmos.slashing.v1beta1.MsgUnjail"
	TypeURLSend           = "/cosmos.bank.v1beta1.MsgSend"
	TypeURLDelegate       = "/cosmos.staking.v1beta1.MsgDelegate"
	TypeURLWithdrawReward = "/cosmos.distribution.v1beta1.MsgWithdrawDelegatorReward"
)

// Coin is a denom-qualified integer amount. Amount is kept as a decimal string
// to match the proto JSON encoding.
type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// MsgUnjail asks the slashing module to reinstate a jailed validator.
type MsgUnjail struct {
	ValidatorAddr string `json:"validator_addr"`
}

func (MsgUnjail) TypeURL() string { return TypeURLUnjail }

// NewMsgUnjail builds an unjail message for the given operator address.
func NewMsgUnjail(valoper string) MsgUnjail {
	return MsgUnjail{ValidatorAddr: valoper}
}

type MsgSend struct {
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	Amount      []Coin `json:"amount"`
}

func (MsgSend) TypeURL() string { return TypeURLSend }

type MsgDelegate struct {
	DelegatorAddress string `json:"delegator_address"`
	ValidatorAddress string `json:"validator_address"`
	Amount           Coin   `json:"amount"`
}

func (MsgDelegate) TypeURL() string { return TypeURLDelegate }

type MsgWithdrawDelegatorReward struct {
	DelegatorAddress string `json:"delegator_address"`
	ValidatorAddress string `json:"validator_address"`
}

func (MsgWithdrawDelegatorReward) TypeURL() string { return TypeURLWithdrawReward }
