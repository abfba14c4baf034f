package main

import (
	"os"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"charitychain/internal/authz"
	"charitychain/internal/chaincode"
	"charitychain/internal/contract"
	"charitychain/internal/infra"
)

func main() {
	logger := infra.NewLogger(os.Getenv("APP_ENV"))
	svc := contract.New(authz.Default(os.Getenv("ORACLE_IDENTITY")), logger)

	cc, err := contractapi.NewChaincode(chaincode.New(svc))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create chaincode")
	}
	if err := cc.Start(); err != nil {
		logger.Fatal().Err(err).Msg("chaincode stopped")
	}
}
