package common

import "fmt"

func RedisKeyLedgerEarned(ledgerID string) string {
	return fmt.Sprintf("reward_ledger:%s:earned", ledgerID)
}

func LockKeyEvent(eventID string) string {
	return fmt.Sprintf("event:%s", eventID)
}

func LockKeyLedgerAccount(ledgerID, userID string) string {
	return fmt.Sprintf("reward_ledger:%s:%s", ledgerID, userID)
}

func LockKeyVoter(eventID, userID string) string {
	return fmt.Sprintf("voting:%s:%s", eventID, userID)
}

func LockKeyItem(itemID string) string {
	return fmt.Sprintf("merch:%s", itemID)
}

func LockKeyOrder(orderID string) string {
	return fmt.Sprintf("order:%s", orderID)
}
