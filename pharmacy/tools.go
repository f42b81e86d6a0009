package pharmacy

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sarathfrancis90/livekit-pharmacy-agent/agent"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/store"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/types"
)

// Tool names. Personas reference these in their allowed lists.
const (
	ToolUpdateName             = "update_name"
	ToolCheckPrescription      = "check_prescription_status"
	ToolCheckMedicine          = "check_medicine_availability"
	ToolGetPharmacyInfo        = "get_pharmacy_info"
	ToolTransferToTriage       = "transfer_to_triage"
	ToolTransferToPrescription = "transfer_to_prescription"
	ToolTransferToInfo         = "transfer_to_info"
)

// PharmacyInfo is the location and hours blurb get_pharmacy_info answers with.
const PharmacyInfo = "Our pharmacy is located at 123 Health Ave, Wellness City.\n" +
	"We are open Monday to Friday from 9 AM to 7 PM, and Saturday from 10 AM to 4 PM."

type updateNameArgs struct {
	Name string `json:"name"`
}

type prescriptionArgs struct {
	PrescriptionID string `json:"prescription_id"`
}

type medicineArgs struct {
	Medicine string `json:"medicine"`
}

// RegisterTools wires every pharmacy tool into the set. Handlers close over
// the shared record and the store; which agent may call which tool is the
// personas' concern, not the registry's.
func RegisterTools(ts *agent.ToolSet, record *UserData, st store.Store) error {
	tools := []agent.Tool{
		{
			Schema: types.ToolSchema{
				Name:        ToolUpdateName,
				Description: "Record the customer's name.",
				Parameters: types.NewObjectSchema().
					AddProperty("name", types.NewStringSchema().WithDescription("The customer's name")).
					AddRequired("name"),
			},
			Handler: updateNameHandler(record),
		},
		{
			Schema: types.ToolSchema{
				Name:        ToolCheckPrescription,
				Description: "Look up the status of a prescription by its ID.",
				Parameters: types.NewObjectSchema().
					AddProperty("prescription_id", types.NewStringSchema().WithDescription("The prescription ID, for example RX123")).
					AddRequired("prescription_id"),
			},
			Handler: checkPrescriptionHandler(record, st),
		},
		{
			Schema: types.ToolSchema{
				Name:        ToolCheckMedicine,
				Description: "Check whether a medicine is in stock.",
				Parameters: types.NewObjectSchema().
					AddProperty("medicine", types.NewStringSchema().WithDescription("The medicine name")).
					AddRequired("medicine"),
			},
			Handler: checkMedicineHandler(record, st),
		},
		{
			Schema: types.ToolSchema{
				Name:        ToolGetPharmacyInfo,
				Description: "Get the pharmacy's address and opening hours.",
			},
			Handler: pharmacyInfoHandler(),
		},
		{
			Schema: types.ToolSchema{
				Name:        ToolTransferToTriage,
				Description: "Hand the caller to the triage agent.",
			},
			Handler: transferHandler(AgentTriage),
		},
		{
			Schema: types.ToolSchema{
				Name:        ToolTransferToPrescription,
				Description: "Hand the caller to the prescription agent.",
			},
			Handler: transferHandler(AgentPrescription),
		},
		{
			Schema: types.ToolSchema{
				Name:        ToolTransferToInfo,
				Description: "Hand the caller to the general information agent.",
			},
			Handler: transferHandler(AgentInfo),
		},
	}

	for _, tool := range tools {
		if err := ts.Register(tool); err != nil {
			return fmt.Errorf("register %s: %w", tool.Schema.Name, err)
		}
	}
	return nil
}

func updateNameHandler(record *UserData) agent.ToolFunc {
	return func(ctx context.Context, args json.RawMessage) (agent.ToolOutput, error) {
		var a updateNameArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return agent.ToolOutput{}, fmt.Errorf("invalid arguments: %w", err)
		}
		if strings.TrimSpace(a.Name) == "" {
			return agent.ToolOutput{}, fmt.Errorf("name must not be empty")
		}
		record.SetCustomerName(a.Name)
		return agent.ToolOutput{Text: fmt.Sprintf("Updated your name to %s.", record.CustomerName())}, nil
	}
}

func checkPrescriptionHandler(record *UserData, st store.Store) agent.ToolFunc {
	return func(ctx context.Context, args json.RawMessage) (agent.ToolOutput, error) {
		var a prescriptionArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return agent.ToolOutput{}, fmt.Errorf("invalid arguments: %w", err)
		}
		if strings.TrimSpace(a.PrescriptionID) == "" {
			return agent.ToolOutput{}, fmt.Errorf("prescription_id must not be empty")
		}

		// Record first: even if the lookup fails, the conversation is now
		// about this prescription.
		record.SetPrescriptionID(a.PrescriptionID)

		status, err := st.PrescriptionStatus(ctx, record.PrescriptionID())
		if err != nil {
			return agent.ToolOutput{}, fmt.Errorf("prescription lookup failed: %w", err)
		}
		return agent.ToolOutput{
			Text: fmt.Sprintf("Prescription %s is %s.", record.PrescriptionID(), status),
		}, nil
	}
}

func checkMedicineHandler(record *UserData, st store.Store) agent.ToolFunc {
	return func(ctx context.Context, args json.RawMessage) (agent.ToolOutput, error) {
		var a medicineArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return agent.ToolOutput{}, fmt.Errorf("invalid arguments: %w", err)
		}
		if strings.TrimSpace(a.Medicine) == "" {
			return agent.ToolOutput{}, fmt.Errorf("medicine must not be empty")
		}

		record.SetMedicineName(a.Medicine)

		availability, err := st.MedicineAvailability(ctx, record.MedicineName())
		if err != nil {
			return agent.ToolOutput{}, fmt.Errorf("availability lookup failed: %w", err)
		}
		return agent.ToolOutput{
			Text: fmt.Sprintf("%s is currently %s.", record.MedicineName(), availability),
		}, nil
	}
}

func pharmacyInfoHandler() agent.ToolFunc {
	return func(ctx context.Context, args json.RawMessage) (agent.ToolOutput, error) {
		return agent.ToolOutput{Text: PharmacyInfo}, nil
	}
}

// transferHandler returns a tool that asks the session to hand control to
// target. The tool itself never touches session state.
func transferHandler(target string) agent.ToolFunc {
	return func(ctx context.Context, args json.RawMessage) (agent.ToolOutput, error) {
		return agent.ToolOutput{
			Text:       fmt.Sprintf("Transferring to %s.", target),
			TransferTo: target,
		}, nil
	}
}
