package snowid

import (
	"log"
	"math/rand"

	"github.com/bwmarrin/snowflake"
)

var node *snowflake.Node

func init() {
	n, err := snowflake.NewNode(rand.Int63n(1024))
	if err != nil {
		log.Fatalf("[snowid] init node: %v", err)
	}
	node = n
}

// New returns a time-ordered unique id, used as order numbers.
func New() string {
	return node.Generate().String()
}
