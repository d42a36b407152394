package rbac

import "go-fleetpay/internal/domain"

// Policy is the static role matrix. "*" matches any resource or action.
var Policy = map[domain.Role][]Permission{
	domain.RoleAdmin: {
		{Resource: "*", Action: "*"},
	},
	domain.RoleOperations: {
		{Resource: "shipment", Action: "read"},
		{Resource: "shipment", Action: "create"},
		{Resource: "shipment", Action: "update"},
		{Resource: "shipment", Action: "delete"},
		{Resource: "shipment", Action: "archive"},
		{Resource: "shipment", Action: "status"},
		{Resource: "shipment", Action: "export"},
		{Resource: "vehicle", Action: "*"},
		{Resource: "user", Action: "read"},
		{Resource: "rate", Action: "read"},
		{Resource: "kpi", Action: "read"},
		{Resource: "kpi", Action: "upload"},
	},
	domain.RoleFinance: {
		{Resource: "shipment", Action: "read"},
		{Resource: "shipment", Action: "export"},
		{Resource: "payroll", Action: "*"},
		{Resource: "adjustment", Action: "*"},
		{Resource: "payment", Action: "*"},
		{Resource: "payslip", Action: "read"},
		{Resource: "rate", Action: "*"},
		{Resource: "kpi", Action: "read"},
		{Resource: "kpi", Action: "upload"},
		{Resource: "user", Action: "read"},
		{Resource: "vehicle", Action: "read"},
	},
	domain.RoleDriver: {
		{Resource: "shipment", Action: "read"},
		{Resource: "shipment", Action: "status"},
		{Resource: "payslip", Action: "read"},
	},
	domain.RoleHelper: {
		{Resource: "shipment", Action: "read"},
		{Resource: "shipment", Action: "status"},
		{Resource: "payslip", Action: "read"},
	},
}

// PolicyRows flattens Policy into casbin "p" rows.
func PolicyRows() [][]string {
	rows := make([][]string, 0, 32)
	for _, role := range domain.Roles() {
		for _, p := range Policy[role] {
			rows = append(rows, []string{string(role), p.Resource, p.Action})
		}
	}
	return rows
}
