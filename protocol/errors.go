package protocol

import "fmt"

// KError is an error code returned inside an otherwise successful broker
// response.
type KError int16

// Numeric error codes returned by the Kafka server.
const (
	ErrNoError                         KError = 0
	ErrUnknown                         KError = -1
	ErrOffsetOutOfRange                KError = 1
	ErrInvalidMessage                  KError = 2
	ErrUnknownTopicOrPartition         KError = 3
	ErrInvalidMessageSize              KError = 4
	ErrLeaderNotAvailable              KError = 5
	ErrNotLeaderForPartition           KError = 6
	ErrRequestTimedOut                 KError = 7
	ErrBrokerNotAvailable              KError = 8
	ErrReplicaNotAvailable             KError = 9
	ErrMessageSizeTooLarge             KError = 10
	ErrStaleControllerEpoch            KError = 11
	ErrOffsetMetadataTooLarge          KError = 12
	ErrNetworkException                KError = 13
	ErrOffsetsLoadInProgress           KError = 14
	ErrConsumerCoordinatorNotAvailable KError = 15
	ErrNotCoordinatorForConsumer       KError = 16
	ErrInvalidTopic                    KError = 17
	ErrMessageSetSizeTooLarge          KError = 18
	ErrNotEnoughReplicas               KError = 19
	ErrNotEnoughReplicasAfterAppend    KError = 20
	ErrInvalidRequiredAcks             KError = 21
	ErrIllegalGeneration               KError = 22
	ErrInconsistentGroupProtocol       KError = 23
	ErrInvalidGroupID                  KError = 24
	ErrUnknownMemberID                 KError = 25
	ErrInvalidSessionTimeout           KError = 26
	ErrRebalanceInProgress             KError = 27
	ErrInvalidCommitOffsetSize         KError = 28
	ErrTopicAuthorizationFailed        KError = 29
	ErrGroupAuthorizationFailed        KError = 30
	ErrClusterAuthorizationFailed      KError = 31
)

func (err KError) Error() string {
	switch err {
	case ErrNoError:
		return "kafka server: not an error"
	case ErrUnknown:
		return "kafka server: unexpected server error"
	case ErrOffsetOutOfRange:
		return "kafka server: offset out of range"
	case ErrInvalidMessage:
		return "kafka server: message CRC mismatch"
	case ErrUnknownTopicOrPartition:
		return "kafka server: unknown topic or partition"
	case ErrInvalidMessageSize:
		return "kafka server: negative message size"
	case ErrLeaderNotAvailable:
		return "kafka server: leader not available, election in progress"
	case ErrNotLeaderForPartition:
		return "kafka server: broker is not the leader for that partition"
	case ErrRequestTimedOut:
		return "kafka server: request exceeded the user-specified time limit"
	case ErrBrokerNotAvailable:
		return "kafka server: broker not available"
	case ErrReplicaNotAvailable:
		return "kafka server: replica not available"
	case ErrMessageSizeTooLarge:
		return "kafka server: message larger than the server will accept"
	case ErrStaleControllerEpoch:
		return "kafka server: stale controller epoch"
	case ErrOffsetMetadataTooLarge:
		return "kafka server: offset metadata string too large"
	case ErrNetworkException:
		return "kafka server: request terminated by a network error"
	case ErrOffsetsLoadInProgress:
		return "kafka server: coordinator still loading offsets"
	case ErrConsumerCoordinatorNotAvailable:
		return "kafka server: coordinator not available"
	case ErrNotCoordinatorForConsumer:
		return "kafka server: broker is not the coordinator for that group"
	case ErrInvalidTopic:
		return "kafka server: invalid topic"
	case ErrMessageSetSizeTooLarge:
		return "kafka server: message set larger than the server will accept"
	case ErrNotEnoughReplicas:
		return "kafka server: not enough in-sync replicas"
	case ErrNotEnoughReplicasAfterAppend:
		return "kafka server: message written but fewer in-sync replicas than required"
	case ErrInvalidRequiredAcks:
		return "kafka server: invalid required acks value"
	case ErrIllegalGeneration:
		return "kafka server: illegal consumer group generation"
	case ErrInconsistentGroupProtocol:
		return "kafka server: inconsistent group protocol"
	case ErrInvalidGroupID:
		return "kafka server: invalid group id"
	case ErrUnknownMemberID:
		return "kafka server: unknown group member id"
	case ErrInvalidSessionTimeout:
		return "kafka server: invalid session timeout"
	case ErrRebalanceInProgress:
		return "kafka server: group rebalance in progress"
	case ErrInvalidCommitOffsetSize:
		return "kafka server: offset commit rejected, commit size too large"
	case ErrTopicAuthorizationFailed:
		return "kafka server: topic authorization failed"
	case ErrGroupAuthorizationFailed:
		return "kafka server: group authorization failed"
	case ErrClusterAuthorizationFailed:
		return "kafka server: cluster authorization failed"
	}
	return fmt.Sprintf("kafka server: unknown error code %d", int16(err))
}

// ForCode converts a wire error code into a KError error, or nil for
// ErrNoError.
func ForCode(code int16) error {
	if KError(code) == ErrNoError {
		return nil
	}
	return KError(code)
}
