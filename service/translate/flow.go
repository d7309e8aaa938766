package translate

import "fmt"

const (
	flowStageSpacing     = 200
	flowRecipientSpacing = 120
)

// Node ids of the fixed stages.
const (
	NodeSender       = "sender"
	NodeInitiation   = "initiation"
	NodeVerification = "verification"
	NodeProcessing   = "processing"
	NodeConfirmation = "confirmation"
	NodeCompletion   = "completion"
)

var flowStages = []struct {
	id    string
	label string
	edge  string // label of the edge leaving the previous stage
}{
	{NodeSender, "Sender", ""},
	{NodeInitiation, "Initiation", "Signs transaction"},
	{NodeVerification, "Verification", "Submits to validators"},
	{NodeProcessing, "Processing", "Validated"},
	{NodeConfirmation, "Confirmation", "Executed"},
	{NodeCompletion, "Completion", "Finalized"},
}

// completionLabels label the completion-to-recipient edges per type.
var completionLabels = map[TransactionType]string{
	TypeTransfer: "Transferred funds",
	TypeSwap:     "Swapped assets",
	TypeBuy:      "Purchased assets",
	TypeSell:     "Sold assets",
	TypeMint:     "Minted tokens",
	TypeBurn:     "Burned tokens",
	TypeCall:     "Contract interaction",
}

const defaultCompletionLabel = "Completed"

// processingDescriptions describe the processing stage per type.
var processingDescriptions = map[TransactionType]string{
	TypeTransfer: "Moving funds between accounts",
	TypeSwap:     "Exchanging one asset for another",
	TypeBuy:      "Paying for and receiving assets",
	TypeSell:     "Selling assets for payment",
	TypeMint:     "Creating new tokens or objects",
	TypeBurn:     "Destroying tokens or objects",
	TypeCall:     "Executing smart contract logic",
	TypeUnknown:  "Execution did not complete",
}

// CompletionLabel returns the completion-edge label for a type.
func CompletionLabel(t TransactionType) string {
	if l, ok := completionLabels[t]; ok {
		return l
	}
	return defaultCompletionLabel
}

// buildFlow lays the stages out left to right and fans the completion node
// out to each recipient. Failed transactions have no recipient nodes.
func buildFlow(tx *TranslatedTransaction) FlowGraph {
	g := FlowGraph{
		Nodes: make([]FlowNode, 0, len(flowStages)+len(tx.Recipients)),
		Edges: make([]FlowEdge, 0, len(flowStages)-1+len(tx.Recipients)),
	}
	failed := !tx.Succeeded()

	for i, stage := range flowStages {
		g.Nodes = append(g.Nodes, FlowNode{
			ID:          stage.id,
			Type:        flowNodeType(stage.id),
			Label:       stage.label,
			Description: stageDescription(stage.id, tx, failed),
			Position:    Position{X: i * flowStageSpacing, Y: 0},
		})
		if i == 0 {
			continue
		}
		prev := flowStages[i-1].id
		g.Edges = append(g.Edges, FlowEdge{
			ID:       prev + "-" + stage.id,
			Source:   prev,
			Target:   stage.id,
			Label:    stage.edge,
			Animated: !failed,
		})
	}

	if failed {
		return g
	}

	label := CompletionLabel(tx.Type)
	x := len(flowStages) * flowStageSpacing
	for i, r := range tx.Recipients {
		id := fmt.Sprintf("recipient-%d", i)
		title := "Recipient"
		if r.Label != "" {
			title = r.Label
		}
		g.Nodes = append(g.Nodes, FlowNode{
			ID:          id,
			Type:        "recipient",
			Label:       title,
			Description: r.Display,
			Position:    Position{X: x, Y: i * flowRecipientSpacing},
		})
		g.Edges = append(g.Edges, FlowEdge{
			ID:       NodeCompletion + "-" + id,
			Source:   NodeCompletion,
			Target:   id,
			Label:    label,
			Animated: true,
		})
	}
	return g
}

func flowNodeType(id string) string {
	if id == NodeSender {
		return "sender"
	}
	return "stage"
}

func stageDescription(id string, tx *TranslatedTransaction, failed bool) string {
	switch id {
	case NodeSender:
		return tx.Sender.Display
	case NodeInitiation:
		return "Transaction created and signed"
	case NodeVerification:
		return "Signature and inputs checked"
	case NodeProcessing:
		if failed {
			return processingDescriptions[TypeUnknown]
		}
		d := processingDescriptions[tx.Type]
		if tx.Protocol != "" {
			d += " on " + tx.Protocol
		}
		return d
	case NodeConfirmation:
		if failed {
			return "Transaction failed"
		}
		return "Effects committed"
	case NodeCompletion:
		if failed {
			return "Gas charged, no other changes"
		}
		return fmt.Sprintf("%d recipient(s)", len(tx.Recipients))
	}
	return ""
}
