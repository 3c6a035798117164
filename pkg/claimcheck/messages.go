package claimcheck

import "fmt"

func prefixTooLongMessage(length int) string {
	return fmt.Sprintf("blob key prefix length %d exceeds maximum %d", length, MaxBlobKeyPrefixLength)
}

func propertyTooManyMessage(count, max int) string {
	return fmt.Sprintf("property count %d exceeds maximum %d", count, max)
}

func propertyTooLargeMessage(size, max int) string {
	return fmt.Sprintf("property set octet size %d exceeds maximum %d", size, max)
}
