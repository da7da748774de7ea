package i18n

var ptBRMessages = map[Code]string{
	CodeEntityNotFound:          "Nenhum combatente com id {{.EntityID}} está no mapa.",
	CodeEntityNameEmpty:         "Um combatente precisa de um nome.",
	CodeEntityInvalidStats:      "Atributos inválidos: {{.Reason}}.",
	CodeEntityInvalidType:       "Tipo de combatente desconhecido {{.Type}}.",
	CodeEntityInvalidSize:       "Tamanho de combatente desconhecido {{.Size}}.",
	CodeAmountNegative:          "O valor não pode ser negativo.",
	CodeTurnSlotOutOfRange:      "A posição {{.Index}} está fora da ordem de iniciativa.",
	CodeTargetOutOfRange:        "Alvo fora de alcance ({{.Distance}} pés > {{.Range}} pés).",
	CodeMoveExceedsSpeed:        "{{.Name}} não pode mover {{.Distance}} pés (deslocamento {{.Speed}} pés).",
	CodeSpellLevelInvalid:       "{{.Spell}} não pode ser conjurada no nível {{.Level}}.",
	CodeWeaponUnknown:           "Arma desconhecida {{.Weapon}}.",
	CodeSpellUnknown:            "Magia desconhecida {{.Spell}}.",
	CodeStatusPresetUnknown:     "Efeito de status desconhecido {{.Name}}.",
	CodeStatusNameEmpty:         "Um efeito de status precisa de um nome.",
	CodeDiceInvalidSpec:         "Os dados precisam de ao menos um lado e um dado.",
	CodeDiceInvalidExpression:   "Expressão de dados inválida {{.Expression}}.",
	CodeSnapshotMalformed:       "O encontro salvo está corrompido: {{.Reason}}.",
	CodeSnapshotVersionMismatch: "O encontro salvo usa o formato {{.Version}}; esperado {{.Expected}}.",
	CodeEncounterNotFound:       "Nenhum encontro salvo com id {{.EncounterID}}.",
	CodePageTokenInvalid:        "O token de página não é válido para esta listagem.",
}
