package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessage_MarkReadBy_Idempotent(t *testing.T) {
	req := require.New(t)
	participants := []string{"alice", "bob", "clara"}
	msg := Message{SenderID: "alice"}

	// When bob reads the message twice
	first := msg.MarkReadBy("bob", participants, ReadByAll)
	second := msg.MarkReadBy("bob", participants, ReadByAll)

	// Then only the first call changes anything
	req.True(first)
	req.False(second)
	req.Equal([]string{"bob"}, msg.ReadBy)
}

func TestMessage_MarkReadBy_Sender_Is_Never_A_Reader(t *testing.T) {
	req := require.New(t)
	msg := Message{SenderID: "alice"}

	changed := msg.MarkReadBy("alice", []string{"alice", "bob"}, ReadByAll)

	req.False(changed)
	req.Empty(msg.ReadBy)
}

func TestMessage_Aggregate_Read_All_Policy(t *testing.T) {
	req := require.New(t)
	participants := []string{"alice", "bob", "clara"}
	msg := Message{SenderID: "alice"}

	// When only bob has read
	msg.MarkReadBy("bob", participants, ReadByAll)
	// Then the aggregate flag stays down
	req.False(msg.Read)

	// When clara reads as well
	msg.MarkReadBy("clara", participants, ReadByAll)
	// Then every participant besides the sender has read
	req.True(msg.Read)
}

func TestMessage_Aggregate_Read_Any_Policy(t *testing.T) {
	req := require.New(t)
	participants := []string{"alice", "bob", "clara"}
	msg := Message{SenderID: "alice"}

	msg.MarkReadBy("bob", participants, ReadByAny)

	req.True(msg.Read)
}

func TestParseReadPolicy_Defaults_To_All(t *testing.T) {
	req := require.New(t)
	req.Equal(ReadByAll, ParseReadPolicy(""))
	req.Equal(ReadByAll, ParseReadPolicy("garbage"))
	req.Equal(ReadByAny, ParseReadPolicy("any"))
}
