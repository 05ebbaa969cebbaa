package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// transferTopic is keccak256("Transfer(address,address,uint256)"), the first
// topic of every ERC-20 Transfer log.
var transferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

type TransferEvent struct {
	From  common.Address
	To    common.Address
	Value *big.Int
}

// FirstTransfer scans receipt logs for the first Transfer event emitted by
// the given token contract. Logs from other contracts and other event types
// are skipped, matching how the transaction is expected to carry exactly one
// relevant token movement.
func FirstTransfer(logs []*types.Log, tokenContract common.Address) (TransferEvent, bool) {
	for _, lg := range logs {
		if lg == nil || lg.Address != tokenContract {
			continue
		}
		if len(lg.Topics) != 3 || lg.Topics[0] != transferTopic {
			continue
		}
		return TransferEvent{
			From:  common.BytesToAddress(lg.Topics[1].Bytes()),
			To:    common.BytesToAddress(lg.Topics[2].Bytes()),
			Value: new(big.Int).SetBytes(lg.Data),
		}, true
	}
	return TransferEvent{}, false
}
