/*
 * Copyright (C) 2025 Gaia-X dataspace community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package trust

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"

	"github.com/santhosh-tekuri/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/loader"

	"github.com/gaiax-dataspace/trustnode/core"
	"github.com/gaiax-dataspace/trustnode/credential"
)

const participantCredentialSchemaURL = "https://registry.gaia-x.eu/schemas/participant-credential.json"

//go:embed assets/participant-credential-schema.json
var participantCredentialSchemaData []byte

const didDocumentSchemaURL = "https://registry.gaia-x.eu/schemas/did-document.json"

//go:embed assets/did-document-schema.json
var didDocumentSchemaData []byte

// participantCredentialSchema is the JSON schema for remote Participant credentials.
var participantCredentialSchema *jsonschema.Schema

// didDocumentSchema is the JSON schema for remote DID documents.
var didDocumentSchema *jsonschema.Schema

func init() {
	// By default, it loads from filesystem, but that sounds unsafe.
	// Since we register our schemas, we don't need to allow loading resources.
	loader.Load = func(url string) (io.ReadCloser, error) {
		return nil, fmt.Errorf("refusing to load unknown schema: %s", url)
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	resources := map[string][]byte{
		participantCredentialSchemaURL: participantCredentialSchemaData,
		didDocumentSchemaURL:           didDocumentSchemaData,
	}
	for u, data := range resources {
		if err := compiler.AddResource(u, bytes.NewReader(data)); err != nil {
			panic(fmt.Errorf("error compiling schema %s: %w", u, err))
		}
	}
	participantCredentialSchema = compiler.MustCompile(participantCredentialSchemaURL)
	didDocumentSchema = compiler.MustCompile(didDocumentSchemaURL)
}

// ValidateParticipantCredential validates the document against the Participant credential schema.
func ValidateParticipantCredential(document credential.Document) error {
	if err := validate(document, participantCredentialSchema); err != nil {
		return core.NewClientError("not a valid Participant credential: %v", err)
	}
	return nil
}

// ValidateDIDDocument validates the document against the DID document schema.
func ValidateDIDDocument(document credential.Document) error {
	if err := validate(document, didDocumentSchema); err != nil {
		return core.NewClientError("not a valid DID document: %v", err)
	}
	return nil
}

func validate(document credential.Document, schema *jsonschema.Schema) error {
	data, err := json.Marshal(document)
	if err != nil {
		return err
	}
	return schema.Validate(bytes.NewReader(data))
}
