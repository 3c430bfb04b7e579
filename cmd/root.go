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

// Package cmd contains the trustnode CLI.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gaiax-dataspace/trustnode/contract"
	"github.com/gaiax-dataspace/trustnode/core"
	"github.com/gaiax-dataspace/trustnode/credential"
	"github.com/gaiax-dataspace/trustnode/didweb"
	"github.com/gaiax-dataspace/trustnode/jsonld"
	"github.com/gaiax-dataspace/trustnode/storage"
	"github.com/gaiax-dataspace/trustnode/token"
	"github.com/gaiax-dataspace/trustnode/trust"
)

func CreateCommand() *cobra.Command {
	command := &cobra.Command{
		Use:           "trustnode",
		Short:         "Gaia-X trust node: did:web identities, verifiable credentials and data product contracts",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	command.PersistentFlags().String("configfile", defaultConfigFile, "Location of the config file.")
	command.PersistentFlags().String("domain", "", "Public domain participants are published under.")
	command.PersistentFlags().String("datadir", "./data", "Directory for published documents and stored contracts.")
	command.AddCommand(createRegisterParticipantCommand())
	command.AddCommand(createProposeContractCommand())
	return command
}

// Execute runs the CLI and exits on error.
func Execute() {
	if err := CreateCommand().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func createRegisterParticipantCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "register-participant",
		Short: "Onboards a participant: builds its did:web document from an X.509 certificate chain and publishes both.",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			if err := applyVerbosity(config.Verbosity); err != nil {
				return err
			}
			if config.Domain == "" {
				return core.NewClientError("missing domain")
			}
			slug, err := cmd.Flags().GetString("slug")
			if err != nil {
				return err
			}
			chainFile, err := cmd.Flags().GetString("chain")
			if err != nil {
				return err
			}
			chainPEM, err := os.ReadFile(chainFile)
			if err != nil {
				return fmt.Errorf("unable to read certificate chain %s: %w", chainFile, err)
			}

			publisher := storage.NewFilePublisher(filepath.Join(config.Datadir, "public"))
			manager := didweb.NewManager(config.Domain, publisher)
			if err := manager.CreateDID(slug, chainPEM); err != nil {
				return err
			}
			cmd.Println(manager.DID(slug))
			return nil
		},
	}
	command.Flags().String("slug", "", "Unique human-readable participant id.")
	command.Flags().String("chain", "", "Path to the participant's PEM encoded X.509 certificate chain.")
	_ = command.MarkFlagRequired("slug")
	_ = command.MarkFlagRequired("chain")
	return command
}

func createProposeContractCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "propose-contract",
		Short: "Proposes a data product contract to a remote consumer and prints the unsigned proposal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			if err := applyVerbosity(config.Verbosity); err != nil {
				return err
			}
			protocol, err := buildProtocol(config)
			if err != nil {
				return err
			}
			productID, err := cmd.Flags().GetString("dataproduct")
			if err != nil {
				return err
			}
			consumerURL, err := cmd.Flags().GetString("consumer")
			if err != nil {
				return err
			}
			product, err := protocol.Products.Get(productID)
			if err != nil {
				return err
			}

			record, proposal, err := protocol.Propose(cmd.Context(), *product, consumerURL)
			if err != nil {
				return err
			}
			asJSON, err := json.MarshalIndent(proposal, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(record.ID)
			cmd.Println(string(asJSON))
			return nil
		},
	}
	command.Flags().String("dataproduct", "", "ID of the data product to propose a contract for.")
	command.Flags().String("consumer", "", "URL of the consumer's Participant credential.")
	_ = command.MarkFlagRequired("dataproduct")
	_ = command.MarkFlagRequired("consumer")
	return command
}

// buildProtocol assembles the contract protocol from the node configuration:
// contract rows in the configured database, published artifacts and stored
// credential bodies under the datadir, data products from config.
func buildProtocol(config *Config) (*contract.Protocol, error) {
	if config.Domain == "" {
		return nil, core.NewClientError("missing domain")
	}
	canonicalizer, err := jsonld.NewCanonicalizer()
	if err != nil {
		return nil, err
	}
	db, err := storage.OpenDB(config.Database, &contract.Record{})
	if err != nil {
		return nil, err
	}
	publisher := storage.NewFilePublisher(filepath.Join(config.Datadir, "public"))
	dids := didweb.NewManager(config.Domain, publisher)
	return &contract.Protocol{
		Resolver:      trust.NewResolver(),
		DIDs:          dids,
		Signer:        credential.Signer{Canonicalizer: canonicalizer, DIDs: dids},
		Verifier:      credential.Verifier{Canonicalizer: canonicalizer},
		Canonicalizer: canonicalizer,
		Contracts:     contract.NewStore(db),
		Content:       storage.NewFileContentStore(filepath.Join(config.Datadir, "contracts")),
		Tokens:        token.NewCacheIssuer(),
		Certificates:  publisher,
		Products:      contract.DataProductSet(config.DataProducts),
	}, nil
}

func applyVerbosity(verbosity string) error {
	level, err := logrus.ParseLevel(verbosity)
	if err != nil {
		return core.NewClientError("invalid verbosity: %s", verbosity)
	}
	logrus.SetLevel(level)
	return nil
}
