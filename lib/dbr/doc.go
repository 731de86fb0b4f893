// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package dbr builds database records from their text source.
//
// A record source file holds one field per line:
//
//	templateName,database/templates/weapon.tpl,
//	damage,12.5,
//	skillName,records/skills/a.dbr;records/skills/b.dbr,
//
// The templateName line selects the template that declares which
// fields exist and how each value is typed. Lines naming fields the
// template does not declare are skipped; the same source text may be
// built against templates from several game versions.
package dbr
