package translate

import (
	"fmt"
	"strings"

	"github.com/brojonat/suiscope/service/sui"
)

// CategorizeObjectType classifies a type tag as package, coin, nft or
// custom, checked in that order.
func CategorizeObjectType(typeTag string) string {
	t := strings.ToLower(typeTag)
	switch {
	case t == "package" || strings.Contains(t, "::package::"):
		return CategoryPackage
	case strings.Contains(t, "coin"):
		return CategoryCoin
	case strings.Contains(t, "nft"):
		return CategoryNFT
	default:
		return CategoryCustom
	}
}

func buildObjects(changes []sui.ObjectChange) []ObjectInfo {
	objects := make([]ObjectInfo, 0, len(changes))
	for _, oc := range changes {
		objects = append(objects, ObjectInfo{
			ObjectID:  oc.ObjectID,
			Type:      oc.ObjectType,
			Category:  CategorizeObjectType(oc.ObjectType),
			Operation: string(oc.Operation),
		})
	}
	return objects
}

func objectStats(o ObjectAnalysis) ObjectStats {
	return ObjectStats{
		Created:     o.Created,
		Modified:    o.Mutated,
		Deleted:     o.Deleted,
		Transferred: o.Transferred,
		Wrapped:     o.Wrapped,
		Published:   o.Published,
	}
}

func buildEvents(events []sui.Event) []EventInfo {
	out := make([]EventInfo, 0, len(events))
	for _, ev := range events {
		out = append(out, EventInfo{
			Type:   ev.Type,
			Module: ev.Module,
			Sender: ev.Sender,
			Data:   ev.Data,
		})
	}
	return out
}

// buildMoveCalls lists the Move calls of a programmable transaction. Other
// kinds have none.
func buildMoveCalls(raw *sui.RawTransaction) []MoveCallInfo {
	calls := []MoveCallInfo{}
	if raw.Kind != sui.KindProgrammable {
		return calls
	}
	for _, cmd := range raw.Commands {
		if cmd.Kind != sui.CommandMoveCall || cmd.MoveCall == nil {
			continue
		}
		mc := cmd.MoveCall
		args := mc.Arguments
		if args == nil {
			args = []string{}
		}
		calls = append(calls, MoveCallInfo{
			Package:       mc.Package,
			Module:        mc.Module,
			Function:      mc.Function,
			Description:   fmt.Sprintf("%s::%s in %s", mc.Module, mc.Function, describePackage(mc.Package)),
			PlainEnglish:  glossFunction(mc.Module, mc.Function),
			Arguments:     args,
			TypeArguments: mc.TypeArguments,
		})
	}
	return calls
}
