// Copyright (c) 2024, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package cli

import (
	"github.com/alecthomas/participle"

	. "github.com/openthread/ot-proploss/types"
)

// noinspection GoStructTag
type Command struct {
	Chain    *ChainCmd    `  @@` //nolint
	Exit     *ExitCmd     `| @@` //nolint
	Help     *HelpCmd     `| @@` //nolint
	Load     *LoadCmd     `| @@` //nolint
	LogLevel *LogLevelCmd `| @@` //nolint
	Node     *NodeCmd     `| @@` //nolint
	Nodes    *NodesCmd    `| @@` //nolint
	Query    *QueryCmd    `| @@` //nolint
	Save     *SaveCmd     `| @@` //nolint
	SetLoss  *SetLossCmd  `| @@` //nolint
	Shadow   *ShadowCmd   `| @@` //nolint
	Show     *ShowCmd     `| @@` //nolint
	Streams  *StreamsCmd  `| @@` //nolint
	Sweep    *SweepCmd    `| @@` //nolint
}

// Num is a signed decimal number.
// noinspection GoStructTag
type Num struct {
	Sign string  `[ @"-" ]`      //nolint
	Val  float64 `(@Int|@Float)` //nolint
}

func (n Num) Value() float64 {
	if n.Sign == "-" {
		return -n.Val
	}
	return n.Val
}

// noinspection GoStructTag
type Position struct {
	X Num `@@` //nolint
	Y Num `@@` //nolint
	Z Num `@@` //nolint
}

// noinspection GoStructTag
type CondFlag struct {
	Val string `@( "los" | "nlosv" | "nlos" )` //nolint
}

func (c *CondFlag) Condition() LosCondition {
	if c == nil {
		return LosConditionUnknown
	}
	cond, _ := ParseLosCondition(c.Val)
	return cond
}

// noinspection GoStructTag
type ParamArg struct {
	Key   string `@Ident`                            //nolint
	Sign  string `[ @"-" ]`                          //nolint
	Value string `@( Float | Int | Ident | String )` //nolint
}

// noinspection GoStructTag
type ChainAddArgs struct {
	Cmd    struct{}   `"add"`  //nolint
	Model  string     `@Ident` //nolint
	Params []ParamArg `{ @@ }` //nolint
}

// noinspection GoStructTag
type ChainCmd struct {
	Cmd   struct{}      `"chain"`      //nolint
	Add   *ChainAddArgs `[ @@`         //nolint
	Del   *int          `| "del" @Int` //nolint
	Clear *string       `| @"clear" ]` //nolint
}

// noinspection GoStructTag
type ExitCmd struct {
	Cmd struct{} `"exit"` //nolint
}

// noinspection GoStructTag
type HelpCmd struct {
	Cmd       struct{} `"help"`       //nolint
	HelpTopic string   `[ (@Ident) ]` //nolint
}

// noinspection GoStructTag
type LoadCmd struct {
	Cmd  struct{} `"load"`  //nolint
	Path string   `@String` //nolint
}

// noinspection GoStructTag
type LogLevelCmd struct {
	Cmd   struct{} `("loglevel"|"log")`                                                                                 //nolint
	Level string   `[@( "micro"|"trace"|"debug"|"info"|"note"|"warn"|"error"|"crit"|"off"|"default"|"D"|"I"|"W"|"E" )]` //nolint
}

// noinspection GoStructTag
type NodeCmd struct {
	Cmd    struct{}  `"node"`       //nolint
	Id     NodeId    `@Int`         //nolint
	Pos    *Position `[ @@`         //nolint
	Offset *Num      `[ "h" @@ ] ]` //nolint
}

// noinspection GoStructTag
type NodesCmd struct {
	Cmd struct{} `"nodes"` //nolint
}

// noinspection GoStructTag
type NodePair struct {
	A NodeId `@Int` //nolint
	B NodeId `@Int` //nolint
}

// noinspection GoStructTag
type PositionPair struct {
	A Position `"a" @@` //nolint
	B Position `"b" @@` //nolint
}

// noinspection GoStructTag
type QueryCmd struct {
	Cmd     struct{}      `"query"`           //nolint
	TxPower Num           `@@`                //nolint
	Nodes   *NodePair     `( @@`              //nolint
	Pos     *PositionPair `| @@ )`            //nolint
	Cond    *CondFlag     `[ @@ ]`            //nolint
	Repeat  *int          `[ "repeat" @Int ]` //nolint
}

// noinspection GoStructTag
type SaveCmd struct {
	Cmd  struct{} `"save"`  //nolint
	Path string   `@String` //nolint
}

// noinspection GoStructTag
type SetLossCmd struct {
	Cmd       struct{} `"setloss"`                //nolint
	A         NodeId   `@Int`                     //nolint
	B         NodeId   `@Int`                     //nolint
	Loss      Num      `@@`                       //nolint
	Symmetric *string  `[ @("sym"|"symmetric") ]` //nolint
}

// noinspection GoStructTag
type ShadowCmd struct {
	Cmd  struct{}  `"shadow"` //nolint
	Cond *CondFlag `[ @@ ]`   //nolint
}

// noinspection GoStructTag
type ShowCmd struct {
	Cmd struct{} `"show"` //nolint
}

// noinspection GoStructTag
type StreamsCmd struct {
	Cmd    struct{} `"streams"`  //nolint
	Seed   *int64   `[ @Int`     //nolint
	Stream *int64   `[ @Int ] ]` //nolint
}

// noinspection GoStructTag
type SweepCmd struct {
	Cmd     struct{}  `"sweep"`     //nolint
	TxPower Num       `@@`          //nolint
	From    Num       `"from" @@`   //nolint
	To      Num       `"to" @@`     //nolint
	Step    Num       `"step" @@`   //nolint
	HeightA *Num      `[ "ha" @@ ]` //nolint
	HeightB *Num      `[ "hb" @@ ]` //nolint
	Cond    *CondFlag `[ @@ ]`      //nolint
}

var (
	commandParser = participle.MustBuild(&Command{})
)

func parseBytes(b []byte, cmd *Command) error {
	return commandParser.ParseBytes(b, cmd)
}
